package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func TestCreateEventRequest(t *testing.T) {
	req := CreateEventRequest{
		Name:       "Autumn Property Expo",
		Location:   "Hall B",
		StallCount: intPtr(40),
		StartDate:  "2026-11-21",
		EndDate:    "2026-11-23 18:00",
	}
	require.NoError(t, req.Validate())

	event, err := req.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, 40, event.StallCount)
	assert.True(t, event.StartDate.Equal(time.Date(2026, 11, 21, 0, 0, 0, 0, time.UTC)))
	assert.True(t, event.EndDate.Equal(time.Date(2026, 11, 23, 18, 0, 0, 0, time.UTC)))

	t.Run("stall count is required", func(t *testing.T) {
		req := req
		req.StallCount = nil
		assert.Error(t, req.Validate())
	})

	t.Run("zero stall count is allowed", func(t *testing.T) {
		req := req
		req.StallCount = intPtr(0)
		assert.NoError(t, req.Validate())
	})

	t.Run("negative stall count", func(t *testing.T) {
		req := req
		req.StallCount = intPtr(-1)
		assert.Error(t, req.Validate())
	})

	t.Run("unparseable date", func(t *testing.T) {
		req := req
		req.StartDate = "next tuesday"
		_, err := req.ToDomain()
		assert.ErrorContains(t, err, "start_date")
	})
}

func TestUpdateEventRequest(t *testing.T) {
	req := UpdateEventRequest{StallCount: intPtr(12), EndDate: strPtr("2026-11-24")}
	require.NoError(t, req.Validate())

	update, err := req.ToDomain()
	require.NoError(t, err)
	assert.Nil(t, update.Name)
	assert.Nil(t, update.StartDate)
	require.NotNil(t, update.EndDate)
	assert.True(t, update.EndDate.Equal(time.Date(2026, 11, 24, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 12, *update.StallCount)

	assert.Error(t, (&UpdateEventRequest{Name: strPtr("")}).Validate())
}

func TestCreateStallTypeRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateStallTypeRequest
		wantErr bool
	}{
		{name: "valid", req: CreateStallTypeRequest{Name: "Corner 3x3", UnitPrice: 1500, Quantity: 10}},
		{name: "free stall", req: CreateStallTypeRequest{Name: "Sponsor", Quantity: 1}},
		{name: "accented name", req: CreateStallTypeRequest{Name: "Entrée (A/B)", Quantity: 2}},
		{name: "missing name", req: CreateStallTypeRequest{Quantity: 1}, wantErr: true},
		{name: "digits only", req: CreateStallTypeRequest{Name: "123", Quantity: 1}, wantErr: true},
		{name: "bad characters", req: CreateStallTypeRequest{Name: "Corner <script>", Quantity: 1}, wantErr: true},
		{name: "zero quantity", req: CreateStallTypeRequest{Name: "Corner", Quantity: 0}, wantErr: true},
		{name: "negative price", req: CreateStallTypeRequest{Name: "Corner", UnitPrice: -1, Quantity: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUpdateStallTypeRequest(t *testing.T) {
	assert.NoError(t, (&UpdateStallTypeRequest{Quantity: intPtr(3)}).Validate())
	assert.NoError(t, (&UpdateStallTypeRequest{Name: strPtr("Island")}).Validate())
	assert.Error(t, (&UpdateStallTypeRequest{Quantity: intPtr(0)}).Validate())
	assert.Error(t, (&UpdateStallTypeRequest{Name: strPtr("!!!")}).Validate())

	update := (&UpdateStallTypeRequest{Quantity: intPtr(3)}).ToDomain()
	assert.Nil(t, update.Name)
	assert.Equal(t, 3, *update.Quantity)
}
