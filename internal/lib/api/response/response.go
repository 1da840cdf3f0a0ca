package response

// Response is the JSON envelope every API handler renders.
type Response struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func Ok(data interface{}) Response {
	return Response{Success: true, Data: data}
}

func Error(msg string) Response {
	return Response{Success: false, Error: msg}
}
