package api

import "github.com/platinummonkey/coffeeshop/pkg/drinks"

// DrinksResponse is the success body of every route that returns drinks
type DrinksResponse struct {
	Success bool        `json:"success"`
	Drinks  interface{} `json:"drinks"`
}

// DeleteResponse is the success body of DELETE /drinks/{id}
type DeleteResponse struct {
	Success bool  `json:"success"`
	Delete  int64 `json:"delete"`
}

func shortResponse(items []drinks.Drink) DrinksResponse {
	return DrinksResponse{Success: true, Drinks: drinks.ShortList(items)}
}

func longResponse(items ...drinks.Drink) DrinksResponse {
	return DrinksResponse{Success: true, Drinks: drinks.LongList(items)}
}
