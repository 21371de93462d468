package epub

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

type container struct {
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

type packageDocument struct {
	Metadata struct {
		Titles    []string `xml:"title"`
		Creators  []string `xml:"creator"`
		Languages []string `xml:"language"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID         string `xml:"id,attr"`
			Href       string `xml:"href,attr"`
			MediaType  string `xml:"media-type,attr"`
			Properties string `xml:"properties,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

func parseRootfile(data []byte) (string, error) {
	var c container
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", fmt.Errorf("epub: parse container.xml: %w", err)
	}
	for _, rf := range c.Rootfiles {
		if p := strings.TrimSpace(rf.FullPath); p != "" {
			return p, nil
		}
	}
	return "", errors.New("epub: rootfile not found in container.xml")
}

func parsePackage(data []byte) (packageDocument, error) {
	var pkg packageDocument
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return packageDocument{}, fmt.Errorf("epub: parse package document: %w", err)
	}
	return pkg, nil
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func (p packageDocument) title() string    { return firstNonEmpty(p.Metadata.Titles) }
func (p packageDocument) creator() string  { return firstNonEmpty(p.Metadata.Creators) }
func (p packageDocument) language() string { return firstNonEmpty(p.Metadata.Languages) }
