package tableau

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
)

// APINamespace is the XML namespace of REST API responses.
const APINamespace = "http://tableau.com/api"

type siteRef struct {
	ContentURL string `xml:"contentUrl,attr"`
}

type patSignInRequest struct {
	XMLName     xml.Name `xml:"tsRequest"`
	Credentials struct {
		TokenName   string  `xml:"personalAccessTokenName,attr"`
		TokenSecret string  `xml:"personalAccessTokenSecret,attr"`
		Site        siteRef `xml:"site"`
	} `xml:"credentials"`
}

type passwordSignInRequest struct {
	XMLName     xml.Name `xml:"tsRequest"`
	Credentials struct {
		Name     string  `xml:"name,attr"`
		Password string  `xml:"password,attr"`
		Site     siteRef `xml:"site"`
	} `xml:"credentials"`
}

// signInPayload renders the sign-in body for exactly one credential shape.
func signInPayload(c Credentials) ([]byte, error) {
	var v any
	switch c.Method {
	case AuthPAT:
		var req patSignInRequest
		req.Credentials.TokenName = c.PATName
		req.Credentials.TokenSecret = c.PATSecret
		req.Credentials.Site.ContentURL = c.SiteContentURL
		v = req
	case AuthStandard:
		var req passwordSignInRequest
		req.Credentials.Name = c.Username
		req.Credentials.Password = c.Password
		req.Credentials.Site.ContentURL = c.SiteContentURL
		v = req
	default:
		return nil, errors.New("unsupported auth method: " + string(c.Method))
	}
	return xml.MarshalIndent(v, "", "    ")
}

// element is the first match of a descendant search.
type element struct {
	attrs map[string]string
	text  string
}

func (e *element) attr(name string) string {
	if e == nil {
		return ""
	}
	return e.attrs[name]
}

// findElement returns the first element anywhere in the document whose local
// name matches. Elements in the REST API namespace and un-namespaced elements
// both match. A nil element with nil error means no match.
func findElement(body []byte, local string) (*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != local {
			continue
		}
		if start.Name.Space != "" && start.Name.Space != APINamespace {
			continue
		}

		el := &element{attrs: make(map[string]string, len(start.Attr))}
		for _, a := range start.Attr {
			el.attrs[a.Name.Local] = a.Value
		}

		var text struct {
			Value string `xml:",chardata"`
		}
		if err := dec.DecodeElement(&text, &start); err != nil {
			return nil, err
		}
		el.text = text.Value
		return el, nil
	}
}
