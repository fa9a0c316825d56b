package request

import (
	"errors"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/propexpo/stall-booking-api/internal/domain"
)

const (
	// At least one letter; letters, digits, spaces and a little punctuation.
	stallTypeNamePattern = `^(?=.*\p{L})[\p{L}\p{N} &'()./-]{1,60}$`
)

var (
	stallTypeNameExp = regexp2.MustCompile(stallTypeNamePattern, regexp2.None)

	errInvalidStallTypeName = errors.New("must contain a letter and at most 60 letters, digits, spaces or &'()./- characters")
)

type CreateStallTypeRequest struct {
	Name      string  `json:"name" example:"Corner 3x3"`
	UnitPrice float64 `json:"unit_price" example:"1500.00"`
	Quantity  int     `json:"quantity" example:"10"`
}

func (req *CreateStallTypeRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.By(validStallTypeName)),
		validation.Field(&req.UnitPrice, validation.Min(0.0)),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1)),
	)
}

func (req *CreateStallTypeRequest) ToDomain(eventID uint) domain.StallType {
	return domain.StallType{
		EventID:   eventID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Quantity:  req.Quantity,
	}
}

type UpdateStallTypeRequest struct {
	Name      *string  `json:"name"`
	UnitPrice *float64 `json:"unit_price"`
	Quantity  *int     `json:"quantity"`
}

func (req *UpdateStallTypeRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.By(validStallTypeName)),
		validation.Field(&req.UnitPrice, validation.Min(0.0)),
		validation.Field(&req.Quantity, validation.NilOrNotEmpty, validation.Min(1)),
	)
}

func (req *UpdateStallTypeRequest) ToDomain() domain.StallTypeUpdate {
	return domain.StallTypeUpdate{
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Quantity:  req.Quantity,
	}
}

func validStallTypeName(value interface{}) error {
	var name string
	switch v := value.(type) {
	case string:
		name = v
	case *string:
		if v == nil {
			return nil
		}
		name = *v
	}
	if name == "" {
		return nil
	}

	ok, err := stallTypeNameExp.MatchString(name)
	if err != nil {
		return err
	}
	if !ok {
		return errInvalidStallTypeName
	}

	return nil
}
