package models

type APIResponse struct {
	Data    interface{} `json:"data" bson:"data"`
	Message interface{} `json:"message" bson:"message"`
}

// TriggerRequest is the body of a manual trigger through the API.
type TriggerRequest struct {
	Message string `json:"message" binding:"required"`
}

// Stats counts the dispatch outcomes since startup.
type Stats struct {
	Received       int64 `json:"received"`
	Delivered      int64 `json:"delivered"`
	Fallback       int64 `json:"fallback"`
	FallbackFailed int64 `json:"fallback_failed"`
	Failed         int64 `json:"failed"`
}

type Status struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Listener string `json:"listener"`
	Camera   string `json:"camera"`
	Stats    Stats  `json:"stats"`
	System   System `json:"system"`
}
