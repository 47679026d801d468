package echoform

import (
	"io"

	"github.com/labstack/echo/v4"
	"github.com/mazrean/formdata"
	"github.com/mazrean/formdata/hook"
)

type Parser struct {
	*hook.Parser
	reader io.Reader
}

func NewParser(c echo.Context, options ...hook.ParserOption) (*Parser, error) {
	boundary, err := formdata.ParseBoundary(c.Request().Header.Get(echo.HeaderContentType))
	if err != nil {
		return nil, err
	}

	return &Parser{
		Parser: hook.NewParser(boundary, options...),
		reader: c.Request().Body,
	}, nil
}

func (p *Parser) Parse() error {
	return p.Parser.ParseReader(p.reader)
}

// NewDecoder returns a Decoder over the multipart/form-data body of the request.
func NewDecoder(c echo.Context, options ...formdata.Option) (*formdata.Decoder, error) {
	boundary, err := formdata.ParseBoundary(c.Request().Header.Get(echo.HeaderContentType))
	if err != nil {
		return nil, err
	}

	return formdata.NewDecoder(formdata.NewReaderSource(c.Request().Body, 0), boundary, options...)
}
