package models

type City struct {
	Name       string
	Country    string
	Population float64 // millions
	Location   Location
}
