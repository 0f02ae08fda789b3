package dto

// Message is a user-facing notice shown next to the response data.
type Message struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Envelope is the success body of every endpoint.
type Envelope struct {
	Data    interface{} `json:"data"`
	Message *Message    `json:"message,omitempty"`
}

// RedirectResponse points the client at another page.
type RedirectResponse struct {
	Redirect string `json:"redirect"`
}
