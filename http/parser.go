package httpform

import (
	"io"
	"net/http"

	"github.com/mazrean/formdata"
	"github.com/mazrean/formdata/hook"
)

type Parser struct {
	*hook.Parser
	reader io.Reader
}

func NewParser(req *http.Request, options ...hook.ParserOption) (*Parser, error) {
	boundary, err := formdata.ParseBoundary(req.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	return &Parser{
		Parser: hook.NewParser(boundary, options...),
		reader: req.Body,
	}, nil
}

func (p *Parser) Parse() error {
	return p.Parser.ParseReader(p.reader)
}

// NewDecoder returns a Decoder over the multipart/form-data body of req.
func NewDecoder(req *http.Request, options ...formdata.Option) (*formdata.Decoder, error) {
	boundary, err := formdata.ParseBoundary(req.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	return formdata.NewDecoder(formdata.NewReaderSource(req.Body, 0), boundary, options...)
}
