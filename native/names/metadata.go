package names

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// MetadataRenderer turns a minted domain into a token URI. Registries start
// with DefaultMetadata and can swap renderers until the metadata is frozen.
type MetadataRenderer func(name, tld string, tokenID uint64) string

// DefaultMetadata renders an on-the-fly data URI: base64 JSON with an embedded
// SVG picturing the full domain name.
func DefaultMetadata(name, tld string, tokenID uint64) string {
	fullName := name + tld

	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 500 500" width="500" height="500">`+
			`<defs><linearGradient id="g" x1="0" y1="0" x2="1" y2="1">`+
			`<stop offset="0%%" stop-color="#0d1b2a"/><stop offset="100%%" stop-color="#1b263b"/>`+
			`</linearGradient></defs>`+
			`<rect width="500" height="500" fill="url(#g)"/>`+
			`<text x="50%%" y="50%%" dominant-baseline="middle" text-anchor="middle" `+
			`font-size="28" fill="#ffffff" font-family="monospace">%s</text>`+
			`</svg>`,
		fullName,
	)
	image := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))

	meta, _ := json.Marshal(map[string]string{
		"name":        fullName,
		"description": fmt.Sprintf("%s, a %s name.", fullName, tld),
		"image":       image,
	})
	return "data:application/json;base64," + base64.StdEncoding.EncodeToString(meta)
}
