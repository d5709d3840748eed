package req

import (
	"fmt"
	"net/http"

	"github.com/xy-planning-network/trailhead"
)

// A Parser decodes posted forms into structs and validates them.
type Parser struct {
	queryParamDecoder queryParamDecoder
	validator
}

func NewParser() *Parser {
	return &Parser{
		queryParamDecoder: newQueryParamDecoder(),
		validator:         newValidator(),
	}
}

// ParseForm decodes into a pointer to a struct the url-encoded form posted in r,
// matching keys to "schema" struct tags.
// If successful, ParseForm runs validation against the contents,
// returning an ErrNotValid if the data fails validation rules.
//
// Query params are not consulted.
func (p *Parser) ParseForm(r *http.Request, structPtr any) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("trailhead/http/req: %w: failed parsing form: %s", trailhead.ErrBadFormat, err)
	}

	if err := p.queryParamDecoder.decode(structPtr, r.PostForm); err != nil {
		return fmt.Errorf("trailhead/http/req: failed decoding form: %w", err)
	}

	if err := p.validate(structPtr); err != nil {
		return fmt.Errorf("trailhead/http/req: %T failed validation: %w", structPtr, err)
	}

	return nil
}
