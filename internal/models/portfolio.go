package models

import "time"

type PortfolioItem struct {
	ID           string      `json:"id" bson:"_id,omitempty"`
	Title        string      `json:"title" bson:"title"`
	RoomType     string      `json:"roomType" bson:"roomType"`
	ProjectType  string      `json:"projectType" bson:"projectType"`
	BudgetRange  BudgetRange `json:"budgetRange" bson:"budgetRange"`
	ImageURL     string      `json:"imageUrl" bson:"imageUrl"`
	ImagePath    string      `json:"imagePath,omitempty" bson:"imagePath,omitempty"`
	ThumbnailURL string      `json:"thumbnailUrl,omitempty" bson:"thumbnailUrl,omitempty"`
	ThumbPath    string      `json:"-" bson:"thumbPath,omitempty"`
	CreatedAt    time.Time   `json:"createdAt" bson:"createdAt"`
}

// CreatePortfolioRequest carries the multipart form fields (the image is read separately)
type CreatePortfolioRequest struct {
	Title       string `form:"title" binding:"required,max=160"`
	RoomType    string `form:"roomType" binding:"required"`
	ProjectType string `form:"projectType" binding:"required"`
	BudgetRange string `form:"budgetRange" binding:"required,budgetrange"`
}

type UpdatePortfolioRequest struct {
	Title       string `json:"title" binding:"max=160"`
	RoomType    string `json:"roomType"`
	ProjectType string `json:"projectType"`
	BudgetRange string `json:"budgetRange" binding:"omitempty,budgetrange"`
}

// RoomTypes - gallery filter values; "All" disables filtering
var RoomTypes = []string{
	"All",
	"Living Room",
	"Bedroom",
	"Kitchen",
	"Bathroom",
	"Dining",
}

// ProjectTypes - catalogue offered in the portfolio form
var ProjectTypes = []string{
	"3BHK Residence",
	"2BHK Residence",
	"Villa",
	"Penthouse",
	"Kitchen Remodel",
	"Bathroom Remodel",
	"Renovation",
}

type PortfolioOptions struct {
	RoomTypes    []string      `json:"roomTypes"`
	ProjectTypes []string      `json:"projectTypes"`
	BudgetRanges []BudgetLabel `json:"budgetRanges"`
}

type BudgetLabel struct {
	ID    BudgetRange `json:"id"`
	Label string      `json:"label"`
}
