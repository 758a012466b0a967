package api

import "github.com/pageza/recipe-remix/backend/internal/model"

// QueryRequest sets the ingredient query
type QueryRequest struct {
	Query *string `json:"query"`
}

// CookbookResponse lists the saved recipes in the order they were saved
type CookbookResponse struct {
	Recipes []model.Recipe `json:"recipes"`
}

// PublishResponse carries the download link of a published export
type PublishResponse struct {
	URL string `json:"url"`
}

// HealthResponse reports the status of the service and its backends
type HealthResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Checks  map[string]string `json:"checks,omitempty"`
}
