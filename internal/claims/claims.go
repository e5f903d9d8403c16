// Package claims recovers a user identity from the payload of a bearer token
// without verifying it. The server remains the only authority on validity.
package claims

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prohmpiriya/ecom-storefront/internal/domain"
)

// Identity namespace claim URIs
const (
	ClaimNameIdentifier = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	ClaimEmail          = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"
	ClaimGivenName      = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/givenname"
	ClaimSurname        = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/surname"
	ClaimRole           = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
)

// lookup order per identity field: namespace URI first, then short names
var (
	idKeys        = []string{ClaimNameIdentifier, "sub", "nameid", "user_id", "id"}
	emailKeys     = []string{ClaimEmail, "email"}
	firstNameKeys = []string{ClaimGivenName, "given_name", "firstName"}
	lastNameKeys  = []string{ClaimSurname, "family_name", "lastName"}
	roleKeys      = []string{ClaimRole, "role", "roles"}
)

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode maps the claims of token to an identity. It reports false for a token
// that is not three dot-separated segments, whose payload does not decode, or
// that carries no recognised role. Expiry is not checked.
func Decode(token string) (domain.Identity, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[1] == "" {
		return domain.Identity{}, false
	}

	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return domain.Identity{}, false
	}

	mc := jwt.MapClaims{}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&mc); err != nil {
		return domain.Identity{}, false
	}

	role, ok := roleOf(mc)
	if !ok {
		return domain.Identity{}, false
	}

	return domain.Identity{
		ID:        firstString(mc, idKeys),
		Email:     firstString(mc, emailKeys),
		FirstName: firstString(mc, firstNameKeys),
		LastName:  firstString(mc, lastNameKeys),
		Role:      role,
	}, true
}

func firstString(mc jwt.MapClaims, keys []string) string {
	for _, k := range keys {
		if s := scalar(mc[k]); s != "" {
			return s
		}
	}
	return ""
}

func scalar(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return fmt.Sprintf("%v", t)
	case bool:
		return fmt.Sprintf("%t", t)
	}
	return ""
}

// roleOf accepts a single role or an array of roles; the first recognised one wins
func roleOf(mc jwt.MapClaims) (domain.Role, bool) {
	for _, k := range roleKeys {
		switch v := mc[k].(type) {
		case string:
			if r, ok := domain.ParseRole(v); ok {
				return r, true
			}
		case []interface{}:
			for _, item := range v {
				if s, isString := item.(string); isString {
					if r, ok := domain.ParseRole(s); ok {
						return r, true
					}
				}
			}
		}
	}
	return "", false
}
