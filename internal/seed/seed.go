// Package seed holds the demo community loaded into an empty store
package seed

import (
	"fmt"
	"time"

	"neighbor-aid-backend/internal/models"
)

// Data is a complete community snapshot, each list in display order
type Data struct {
	Users         []models.User
	Requests      []models.ItemRequest
	Messages      []models.ChatMessage
	Events        []models.CommunityEvent
	Notifications []models.Notification
}

var allBadges = []models.BadgeType{models.BadgeGoodNeighbor, models.BadgeSuperHelper, models.BadgeTrusted}

// Demo returns the demo neighborhood: five residents, four open requests,
// one conversation, two events and a few notifications
func Demo() Data {
	joined := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)

	return Data{
		Users: []models.User{
			demoUser("user-1-uid", "Marcus Aurelius", "marcus", 1005, 4.8, 12, 25, true, allBadges, "MARCUS-4825", "", joined),
			demoUser("user-2-uid", "José", "jose", 1011, 4.5, 5, 10, true, []models.BadgeType{models.BadgeGoodNeighbor}, "JOSE-1122", "", joined),
			demoUser("user-3-uid", "Camila", "camila", 1025, 4.9, 8, 15, true, []models.BadgeType{models.BadgeGoodNeighbor}, "CAMILA-9876", "user-1-uid", joined),
			demoUser("user-4-uid", "Fernando", "fernando", 1027, 4.7, 3, 7, false, []models.BadgeType{}, "FER-5543", "", joined),
			demoUser("user-5-uid", "Ana", "ana", 1045, 5.0, 20, 30, true, allBadges, "ANA-3141", "user-3-uid", joined),
		},
		Requests: []models.ItemRequest{
			{
				ID:          "req-1",
				UserID:      "user-1-uid",
				ItemName:    "FURADEIRA MEGA POWER",
				Description: "Preciso prender alguns quadros para o trabalho. Alguém?",
				Category:    "Ferramentas",
				Urgency:     models.UrgencyUrgent,
				CreatedAt:   "May 24",
				Distance:    "100m",
				Status:      models.StatusOpen,
				Offers: []models.Offer{
					{ID: "offer-1", UserID: "user-2-uid", Message: "Olá! Vi que precisa de uma furadeira..."},
					{ID: "offer-2", UserID: "user-3-uid", Message: "Eu tenho uma! Posso te emprestar."},
					{ID: "offer-3", UserID: "user-4-uid", Message: "Opa, vizinho! Tenho uma aqui se precisar."},
				},
				PostedAt: time.Date(2024, time.May, 24, 9, 30, 0, 0, time.UTC),
			},
			{
				ID:          "req-2",
				UserID:      "user-1-uid",
				ItemName:    "ESCADA GRANDE",
				Description: "Preciso trocar uma lâmpada no teto alto da sala.",
				Category:    "Casa",
				Urgency:     models.UrgencyNormal,
				CreatedAt:   "May 24",
				Distance:    "100m",
				Status:      models.StatusOpen,
				Offers: []models.Offer{
					{ID: "offer-4", UserID: "user-2-uid", Message: "Olá! Vi que precisa de uma escada..."},
					{ID: "offer-5", UserID: "user-3-uid", Message: "Ainda precisa? Tenho uma disponível."},
					{ID: "offer-6", UserID: "user-4-uid", Message: "Posso ajudar com a furadeira se quiser."},
				},
				PostedAt: time.Date(2024, time.May, 24, 8, 0, 0, 0, time.UTC),
			},
			{
				ID:          "req-3",
				UserID:      "user-5-uid",
				ItemName:    "BOMBA DE ENCHER PNEU",
				Description: "A bicicleta da minha filha está com pneu murcho, alguém pode me salvar?",
				Category:    "Veículos",
				Urgency:     models.UrgencyNormal,
				CreatedAt:   "May 23",
				Distance:    "350m",
				Status:      models.StatusOpen,
				Offers:      []models.Offer{},
				PostedAt:    time.Date(2024, time.May, 23, 17, 0, 0, 0, time.UTC),
			},
			{
				ID:          "req-4",
				UserID:      "user-4-uid",
				ItemName:    "GRILL ELÉTRICO",
				Description: "Queria fazer um churrasco na varanda mas meu grill quebrou.",
				Category:    "Cozinha",
				Urgency:     models.UrgencyNormal,
				CreatedAt:   "May 22",
				Distance:    "500m",
				Status:      models.StatusOpen,
				Offers:      []models.Offer{},
				PostedAt:    time.Date(2024, time.May, 22, 12, 0, 0, 0, time.UTC),
			},
		},
		Messages: []models.ChatMessage{
			demoMessage("msg-1", "user-3-uid", "user-1-uid", "Olá! Vi que precisa de uma furadeira, eu tenho uma! Posso te emprestar.", 10, 0),
			demoMessage("msg-2", "user-1-uid", "user-3-uid", "Olá Camila, que ótimo! Quando posso pegar?", 10, 1),
			demoMessage("msg-3", "user-3-uid", "user-1-uid", "Pode ser hoje à tarde, depois das 14h. Fica bom para você?", 10, 2),
			demoMessage("msg-4", "user-1-uid", "user-3-uid", "Perfeito! Me passa seu endereço por favor.", 10, 3),
			demoMessage("msg-5", "user-3-uid", "user-1-uid", "Claro, é na Rua das Flores, 123. Apartamento 45.", 10, 5),
		},
		Events: []models.CommunityEvent{
			{
				ID:                "evt-1",
				CreatorID:         "user-3-uid",
				Title:             "Festa Junina do Condomínio",
				Description:       "Venha celebrar com a gente! Teremos comidas típicas, música e muita diversão para toda a família. Traga um prato de doce ou salgado para compartilhar.",
				Category:          "Festa",
				PhotoURL:          "https://picsum.photos/seed/festajunina/800/400",
				EventDate:         time.Date(2024, time.June, 29, 18, 0, 0, 0, time.UTC),
				Location:          "Salão de Festas",
				InterestedUserIDs: []string{"user-2-uid", "user-4-uid", "user-5-uid"},
			},
			{
				ID:                "evt-2",
				CreatorID:         "user-5-uid",
				Title:             "Bazar de Trocas de Brinquedos",
				Description:       "Vamos ensinar o desapego para as crianças! Traga brinquedos em bom estado para trocar com outros vizinhos. Uma ótima oportunidade para renovar a brincadeira sem gastar nada.",
				Category:          "Bazar",
				PhotoURL:          "https://picsum.photos/seed/brinquedos/800/400",
				EventDate:         time.Date(2024, time.July, 6, 10, 0, 0, 0, time.UTC),
				Location:          "Playground",
				InterestedUserIDs: []string{"user-3-uid"},
			},
		},
		Notifications: []models.Notification{
			{ID: "notif-1", UserID: "user-1-uid", Type: models.NotificationNewOffer, Text: "José ofereceu ajuda para o seu pedido de FURADEIRA.", CreatedAt: "há 5 min"},
			{ID: "notif-2", UserID: "user-1-uid", Type: models.NotificationNewOffer, Text: "Camila também pode te ajudar com a FURADEIRA.", CreatedAt: "há 28 min"},
			{ID: "notif-3", UserID: "user-4-uid", Type: models.NotificationNewReview, Text: "Ana te avaliou com 5 estrelas pelo empréstimo do Grill Elétrico.", IsRead: true, CreatedAt: "há 2h"},
			{ID: "notif-4", UserID: "user-1-uid", Type: models.NotificationAchievement, Text: `Parabéns! Você ganhou o selo "Bom Vizinho" por 10 empréstimos.`, IsRead: true, CreatedAt: "ontem"},
		},
	}
}

func demoUser(
	id, name, handle string,
	picture int,
	reputation float64,
	requests, loans int,
	verified bool,
	badges []models.BadgeType,
	inviteCode, invitedBy string,
	joined time.Time,
) models.User {
	return models.User{
		ID:                id,
		Name:              name,
		Email:             handle + "@demo.com",
		AvatarURL:         fmt.Sprintf("https://picsum.photos/id/%d/200/200", picture),
		Reputation:        reputation,
		RequestsMade:      requests,
		LoansMade:         loans,
		IsVerified:        verified,
		IsProfileComplete: true,
		Badges:            append([]models.BadgeType{}, badges...),
		InviteCode:        inviteCode,
		InvitedBy:         invitedBy,
		CreatedAt:         joined,
	}
}

func demoMessage(id, from, to, text string, hour, minute int) models.ChatMessage {
	sent := time.Date(2024, time.May, 24, hour, minute, 0, 0, time.UTC)
	return models.ChatMessage{
		ID:          id,
		UserID:      from,
		RecipientID: to,
		RequestID:   "req-1",
		Text:        text,
		Timestamp:   sent.Format("15:04"),
		SentAt:      sent,
	}
}
