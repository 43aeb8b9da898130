package domain

// Image is an uploaded file as received from the client.
type Image struct {
	Filename string
	Data     []byte
}
