package services

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	MenuURL(restaurantID string) string
	Generate(restaurantID string) ([]byte, error)
}

// MenuQRGenerator encodes the public menu URL of a restaurant as a PNG that
// can be printed on tables.
type MenuQRGenerator struct {
	BaseURL string
	Size    int
}

func NewMenuQRGenerator(baseURL string) MenuQRGenerator {
	return MenuQRGenerator{BaseURL: strings.TrimRight(baseURL, "/"), Size: 256}
}

func (g MenuQRGenerator) MenuURL(restaurantID string) string {
	return fmt.Sprintf("%s/public/restaurants/%s/menu", g.BaseURL, restaurantID)
}

func (g MenuQRGenerator) Generate(restaurantID string) ([]byte, error) {
	return qrcode.Encode(g.MenuURL(restaurantID), qrcode.Medium, g.Size)
}
