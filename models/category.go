package models

// Category is a fixed expense category from the mobile app catalogue.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
	Hex  string `json:"hex"`
}

// Catalogue figé, identique à celui embarqué dans l'app mobile.
var Categories = []Category{
	{ID: "1", Name: "Nourriture", Icon: "cutlery", Hex: "#ea580c"},
	{ID: "2", Name: "Transport", Icon: "bus", Hex: "#2563eb"},
	{ID: "3", Name: "Loisirs", Icon: "gamepad", Hex: "#9333ea"},
	{ID: "4", Name: "Shopping", Icon: "shopping-bag", Hex: "#db2777"},
	{ID: "5", Name: "Santé", Icon: "medkit", Hex: "#dc2626"},
	{ID: "6", Name: "Autre", Icon: "ellipsis-h", Hex: "#4b5563"},
}

func GetCategoryByID(id string) *Category {
	for i := range Categories {
		if Categories[i].ID == id {
			return &Categories[i]
		}
	}
	return nil
}
