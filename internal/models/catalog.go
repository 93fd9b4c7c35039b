package models

import "slices"

// AllCategories is the feed filter value that matches every category
const AllCategories = "Todos"

// RequestCategories lists the categories an item request can be filed under
var RequestCategories = []string{"Ferramentas", "Cozinha", "Eletrônicos", "Casa", "Jardim", "Esportes", "Veículos", "Outros"}

// EventCategories lists the categories a community event can be filed under
var EventCategories = []string{"Festa", "Bazar", "Reunião", "Esportes", "Cultural", "Outros"}

// IsRequestCategory reports whether the category is known
func IsRequestCategory(category string) bool {
	return slices.Contains(RequestCategories, category)
}

// IsEventCategory reports whether the event category is known
func IsEventCategory(category string) bool {
	return slices.Contains(EventCategories, category)
}
