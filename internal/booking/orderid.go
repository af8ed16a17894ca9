package booking

import "github.com/google/uuid"

const orderIDPrefix = "ORDER-"

// NewOrderID returns ORDER-<uuid v7>. v7 ids sort by creation time.
func NewOrderID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return orderIDPrefix + id.String(), nil
}
