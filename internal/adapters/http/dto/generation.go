package dto

type GenerateImageResponse struct {
	Success   bool   `json:"success"`
	ImageURL  string `json:"imageUrl"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

// ClientConfigResponse carries the runtime settings the browser client
// fetches before it renders the map.
type ClientConfigResponse struct {
	MapboxToken  string `json:"mapboxToken"`
	PlacesAPIKey string `json:"placesApiKey"`
	PlacesAPIURL string `json:"placesApiUrl"`
	APIBaseURL   string `json:"apiBaseUrl"`
}
