// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package stops

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/http2"
	"github.com/MKuranowski/RadomGTFS/radom_gtfs/util/mcsv"
)

var ErrNoStops = errors.New("stop source returned no stops")

type ErrInvalidStop struct {
	Source, Field string
	Reason        error
}

func (e ErrInvalidStop) Error() string {
	return fmt.Sprintf("%s: invalid stop %s: %s", e.Source, e.Field, e.Reason)
}

func (e ErrInvalidStop) Unwrap() error {
	return e.Reason
}

const getGoogleStopsRequest = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
<soap:Body><GetGoogleStops xmlns="http://PublicService/" /></soap:Body>
</soap:Envelope>
`

// FetchMyBus retrieves stops from the GetGoogleStops method of the MZDiK
// passenger information SOAP service.
func FetchMyBus(ctx context.Context, client *http.Client, url string) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(getGoogleStopsRequest))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", `"http://PublicService/GetGoogleStops"`)

	resp, err := http2.Do(client, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return ReadMyBus(resp.Body)
}

// ReadMyBus parses a GetGoogleStops response. Every <S id="" n="" y="" x="" /> element
// describes a single stop, regardless of its position in the envelope.
func ReadMyBus(r io.Reader) (records []Record, err error) {
	d := xml.NewDecoder(r)
	for {
		var tok xml.Token
		tok, err = d.Token()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("GetGoogleStops: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "S" {
			continue
		}

		var s struct {
			ID   string `xml:"id,attr"`
			Name string `xml:"n,attr"`
			Lat  string `xml:"y,attr"`
			Lon  string `xml:"x,attr"`
		}
		if err = d.DecodeElement(&s, &start); err != nil {
			return nil, fmt.Errorf("GetGoogleStops: %w", err)
		}

		var record Record
		record, err = parseRecord("GetGoogleStops", s.ID, s.Name, s.Lat, s.Lon)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, ErrNoStops
	}
	return records, nil
}

// ReadCSV reads stops from a CSV file with the id, nazwa, szerokosc and dlugosc columns.
func ReadCSV(r io.Reader) (records []Record, err error) {
	c := mcsv.NewReader(r)
	if err = c.Require("id", "nazwa", "szerokosc", "dlugosc"); err != nil {
		return nil, fmt.Errorf("stops.csv: %w", err)
	}

	for row := range c.Iter() {
		var record Record
		record, err = parseRecord("stops.csv", row["id"], row["nazwa"], row["szerokosc"], row["dlugosc"])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", c.Line(), err)
		}
		records = append(records, record)
	}

	if err = c.Err(); err != nil {
		return nil, fmt.Errorf("stops.csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoStops
	}
	return records, nil
}

func parseRecord(source, id, name, lat, lon string) (r Record, err error) {
	r.ID, err = strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return r, ErrInvalidStop{source, "id", err}
	}

	r.Name = strings.TrimSpace(name)

	r.Lat, err = strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return r, ErrInvalidStop{source, "latitude", err}
	}

	r.Lon, err = strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return r, ErrInvalidStop{source, "longitude", err}
	}
	return
}
