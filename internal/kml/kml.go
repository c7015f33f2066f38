// Package kml renders placemark records into a KML 2.2 document.
package kml

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/Houeta/csv2kml/internal/models"
)

// Namespace is the KML 2.2 root namespace.
const Namespace = "http://www.opengis.net/kml/2.2"

// Default marker style, shared by every placemark.
const (
	styleID   = "defaultStyle"
	iconColor = "ff0000ff" // red, in KML aabbggrr notation
	iconScale = "1.0"
	iconHref  = "http://maps.google.com/mapfiles/kml/pushpin/red-pushpin.png"
)

const indent = "  "

// Document is the input to Marshal: a title plus the markers to render.
type Document struct {
	Name       string
	Placemarks []models.Placemark
}

type kmlRoot struct {
	XMLName  xml.Name    `xml:"kml"`
	Xmlns    string      `xml:"xmlns,attr"`
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Name       string         `xml:"name"`
	Style      kmlStyle       `xml:"Style"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlStyle struct {
	ID        string       `xml:"id,attr"`
	IconStyle kmlIconStyle `xml:"IconStyle"`
}

type kmlIconStyle struct {
	Color string  `xml:"color"`
	Scale string  `xml:"scale"`
	Icon  kmlIcon `xml:"Icon"`
}

type kmlIcon struct {
	Href string `xml:"href"`
}

type kmlPlacemark struct {
	Name         string           `xml:"name"`
	Description  *kmlDescription  `xml:"description"`
	StyleURL     string           `xml:"styleUrl"`
	ExtendedData *kmlExtendedData `xml:"ExtendedData"`
	Point        kmlPoint         `xml:"Point"`
}

// kmlDescription renders either escaped character data or, when the
// description embeds the raw HTML attribute table, an unescaped CDATA block.
type kmlDescription struct {
	Text string
	Raw  bool
}

func (d kmlDescription) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if d.Raw {
		return e.EncodeElement(struct {
			S string `xml:",cdata"`
		}{d.Text}, start)
	}
	return e.EncodeElement(d.Text, start)
}

type kmlExtendedData struct {
	Data []kmlData `xml:"Data"`
}

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

// Marshal renders the document as pretty-printed UTF-8 KML with two-space
// indentation. Field text is XML-escaped except inside the CDATA table block.
func Marshal(doc Document) ([]byte, error) {
	root := kmlRoot{
		Xmlns: Namespace,
		Document: kmlDocument{
			Name: doc.Name,
			Style: kmlStyle{
				ID: styleID,
				IconStyle: kmlIconStyle{
					Color: iconColor,
					Scale: iconScale,
					Icon:  kmlIcon{Href: iconHref},
				},
			},
			Placemarks: make([]kmlPlacemark, 0, len(doc.Placemarks)),
		},
	}

	for _, placemark := range doc.Placemarks {
		root.Document.Placemarks = append(root.Document.Placemarks, kmlPlacemark{
			Name:         placemark.Name,
			Description:  buildDescription(placemark),
			StyleURL:     "#" + styleID,
			ExtendedData: buildExtendedData(placemark),
			Point:        kmlPoint{Coordinates: FormatCoordinates(placemark.Coordinates)},
		})
	}

	body, err := xml.MarshalIndent(root, "", indent)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal KML document: %w", err)
	}

	return []byte(xml.Header + string(body) + "\n"), nil
}

// FormatCoordinates renders a "longitude,latitude,0" triple. Floats are
// formatted with the minimal digits that survive an exact round trip.
func FormatCoordinates(coords models.Coordinates) string {
	lon := strconv.FormatFloat(coords.Longitude, 'f', -1, 64)
	lat := strconv.FormatFloat(coords.Latitude, 'f', -1, 64)
	return lon + "," + lat + ",0"
}

// buildDescription returns nil when the placemark has neither description
// text nor attributes, so the element is omitted. When attributes are
// present they are appended as a raw HTML table inside a CDATA block.
func buildDescription(placemark models.Placemark) *kmlDescription {
	if len(placemark.Attributes) == 0 {
		if placemark.Description == "" {
			return nil
		}
		return &kmlDescription{Text: placemark.Description}
	}

	var sb strings.Builder
	sb.WriteString(placemark.Description)
	sb.WriteString("\n<table border='1'>")
	for _, attr := range placemark.Attributes {
		fmt.Fprintf(&sb, "<tr><td><b>%s</b></td><td>%s</td></tr>", attr.Key, attr.Value)
	}
	sb.WriteString("</table>")

	return &kmlDescription{Text: sb.String(), Raw: true}
}

// buildExtendedData mirrors the attribute table in structured form.
func buildExtendedData(placemark models.Placemark) *kmlExtendedData {
	if len(placemark.Attributes) == 0 {
		return nil
	}

	data := make([]kmlData, 0, len(placemark.Attributes))
	for _, attr := range placemark.Attributes {
		data = append(data, kmlData{Name: attr.Key, Value: attr.Value})
	}

	return &kmlExtendedData{Data: data}
}
