package fdsn

import (
	"encoding/xml"
	"sort"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/models"
)

// StationXML document, parsed only as deep as station normalization needs.
// Unknown elements are ignored so schema extensions from individual data
// centers do not break the parse.
type stationXMLDoc struct {
	XMLName  xml.Name     `xml:"FDSNStationXML"`
	Networks []xmlNetwork `xml:"Network"`
}

type xmlNetwork struct {
	Code     string       `xml:"code,attr"`
	Stations []xmlStation `xml:"Station"`
}

type xmlStation struct {
	Code      string       `xml:"code,attr"`
	StartDate string       `xml:"startDate,attr"`
	EndDate   string       `xml:"endDate,attr"`
	Latitude  float64      `xml:"Latitude"`
	Longitude float64      `xml:"Longitude"`
	Elevation *float64     `xml:"Elevation"`
	Site      xmlSite      `xml:"Site"`
	Channels  []xmlChannel `xml:"Channel"`
}

type xmlSite struct {
	Name string `xml:"Name"`
}

type xmlChannel struct {
	Code string `xml:"code,attr"`
}

// ParseStationXML normalizes a station/1 response into station records.
// Channel codes are collected into a sorted set, and their 2-letter prefixes
// become the station's channel types (BH, HH, EH, ...).
func ParseStationXML(data []byte) ([]models.Station, error) {
	var doc stationXMLDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var out []models.Station
	for _, net := range doc.Networks {
		for _, sta := range net.Stations {
			codes := make(map[string]struct{})
			for _, cha := range sta.Channels {
				if cha.Code != "" {
					codes[cha.Code] = struct{}{}
				}
			}
			channels := make([]string, 0, len(codes))
			typeSet := make(map[string]struct{})
			for code := range codes {
				channels = append(channels, code)
				if len(code) >= 2 {
					typeSet[code[:2]] = struct{}{}
				}
			}
			sort.Strings(channels)
			channelTypes := make([]string, 0, len(typeSet))
			for t := range typeSet {
				channelTypes = append(channelTypes, t)
			}
			sort.Strings(channelTypes)

			out = append(out, models.Station{
				Network:      net.Code,
				Station:      sta.Code,
				Latitude:     sta.Latitude,
				Longitude:    sta.Longitude,
				Elevation:    sta.Elevation,
				StartDate:    sta.StartDate,
				EndDate:      sta.EndDate,
				SiteName:     sta.Site.Name,
				Channels:     channels,
				ChannelTypes: channelTypes,
			})
		}
	}
	return out, nil
}
