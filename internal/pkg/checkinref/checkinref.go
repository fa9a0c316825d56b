// Package checkinref issues and verifies the references printed in check-in QR
// codes. A reference is an HS256 token without time claims, so issuing it twice
// for the same target yields the same string.
package checkinref

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ScopeStall = "stall"
	ScopeEvent = "event"

	stallPath = "stall-checkin"
	eventPath = "event-checkin"
)

var ErrInvalidReference = errors.New("invalid check-in reference")

type Claims struct {
	Scope   string `json:"scope"`
	EventID uint   `json:"eid"`
	StallID uint   `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// Target is what a reference points at. StallID is zero for event scope.
type Target struct {
	Scope   string
	EventID uint
	StallID uint
}

type Issuer struct {
	key     []byte
	issuer  string
	baseURL string
}

func NewIssuer(key []byte, issuer, frontendBaseURL string) *Issuer {
	return &Issuer{
		key:     key,
		issuer:  issuer,
		baseURL: strings.TrimRight(frontendBaseURL, "/"),
	}
}

// Stall returns the reference and check-in URL of one stall of an event.
func (i *Issuer) Stall(eventID, stallID uint) (string, string, error) {
	ref, err := i.sign(Claims{Scope: ScopeStall, EventID: eventID, StallID: stallID})
	if err != nil {
		return "", "", err
	}

	link := fmt.Sprintf("%s/buyer-dashboard/%s/%d/%d?ref=%s", i.baseURL, stallPath, eventID, stallID, url.QueryEscape(ref))

	return ref, link, nil
}

// Event returns the reference and check-in URL of the event as a whole.
func (i *Issuer) Event(eventID uint) (string, string, error) {
	ref, err := i.sign(Claims{Scope: ScopeEvent, EventID: eventID})
	if err != nil {
		return "", "", err
	}

	link := fmt.Sprintf("%s/buyer-dashboard/%s/%d?ref=%s", i.baseURL, eventPath, eventID, url.QueryEscape(ref))

	return ref, link, nil
}

// Parse accepts a bare reference or a full check-in URL. For URLs the ids in
// the path must agree with the signed ones.
func (i *Issuer) Parse(referenceOrURL string) (Target, error) {
	input := strings.TrimSpace(referenceOrURL)
	if input == "" {
		return Target{}, ErrInvalidReference
	}

	if !strings.Contains(input, "/") {
		return i.verify(input)
	}

	u, err := url.Parse(input)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}

	target, err := i.verify(u.Query().Get("ref"))
	if err != nil {
		return Target{}, err
	}

	pathTarget, err := targetFromPath(u.Path)
	if err != nil {
		return Target{}, err
	}
	if pathTarget != target {
		return Target{}, fmt.Errorf("%w: url does not match reference", ErrInvalidReference)
	}

	return target, nil
}

func (i *Issuer) sign(claims Claims) (string, error) {
	claims.Issuer = i.issuer

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("token.SignedString -> %w", err)
	}

	return token, nil
}

func (i *Issuer) verify(ref string) (Target, error) {
	if ref == "" {
		return Target{}, ErrInvalidReference
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(ref, claims, func(*jwt.Token) (interface{}, error) {
		return i.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(i.issuer))
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}

	switch {
	case claims.EventID == 0:
		return Target{}, ErrInvalidReference
	case claims.Scope == ScopeStall && claims.StallID != 0:
	case claims.Scope == ScopeEvent && claims.StallID == 0:
	default:
		return Target{}, ErrInvalidReference
	}

	return Target{Scope: claims.Scope, EventID: claims.EventID, StallID: claims.StallID}, nil
}

func targetFromPath(path string) (Target, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")

	for i, segment := range segments {
		rest := segments[i+1:]

		switch {
		case segment == stallPath && len(rest) == 2:
			eventID, err := parseID(rest[0])
			if err != nil {
				return Target{}, err
			}
			stallID, err := parseID(rest[1])
			if err != nil {
				return Target{}, err
			}
			return Target{Scope: ScopeStall, EventID: eventID, StallID: stallID}, nil

		case segment == eventPath && len(rest) == 1:
			eventID, err := parseID(rest[0])
			if err != nil {
				return Target{}, err
			}
			return Target{Scope: ScopeEvent, EventID: eventID}, nil
		}
	}

	return Target{}, fmt.Errorf("%w: unknown check-in url", ErrInvalidReference)
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad id %q", ErrInvalidReference, s)
	}

	return uint(id), nil
}
