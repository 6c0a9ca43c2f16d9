package voice

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	studio "github.com/twilio/twilio-go/rest/studio/v2"
)

type fakeFlows struct {
	flowSID string
	params  *studio.CreateExecutionParams
	calls   int
	err     error
}

func (f *fakeFlows) CreateExecution(flowSid string, params *studio.CreateExecutionParams) (*studio.StudioV2Execution, error) {
	f.calls++
	f.flowSID = flowSid
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "FN123"
	return &studio.StudioV2Execution{Sid: &sid}, nil
}

func TestTwilioCaller_Call(t *testing.T) {
	flows := &fakeFlows{}
	caller := newTwilioCaller(flows, "FW1", "+19804002746")

	err := caller.Call(context.Background(), Alert{
		Phone:       "+918148560644",
		DriverName:  "Inspector Singh",
		VehicleCode: "P102",
		IncidentID:  uuid.New(),
	})

	require.NoError(t, err)
	assert.Equal(t, "FW1", flows.flowSID)
	require.NotNil(t, flows.params.To)
	assert.Equal(t, "+918148560644", *flows.params.To)
	require.NotNil(t, flows.params.From)
	assert.Equal(t, "+19804002746", *flows.params.From)
	require.NotNil(t, flows.params.Parameters)
	assert.Equal(t, map[string]interface{}{"driverName": "Inspector Singh", "vehicleID": "P102"}, *flows.params.Parameters)
}

func TestTwilioCaller_Error(t *testing.T) {
	flows := &fakeFlows{err: errors.New("Status: 401 - ApiError 20003: Authenticate")}
	caller := newTwilioCaller(flows, "FW1", "+1")

	err := caller.Call(context.Background(), Alert{Phone: "+1", VehicleCode: "A001"})

	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to create twilio flow execution")
	assert.ErrorContains(t, err, "Authenticate")
}

func TestTwilioCaller_CancelledContext(t *testing.T) {
	flows := &fakeFlows{}
	caller := newTwilioCaller(flows, "FW1", "+1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := caller.Call(ctx, Alert{Phone: "+1", VehicleCode: "A001"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, flows.calls)
}

func TestNewTwilioCaller_UsesStudioClient(t *testing.T) {
	caller := NewTwilioCaller("AC123", "secret", "FW1", "+1", 0)
	require.NotNil(t, caller.flows)
	assert.Equal(t, "FW1", caller.flowSID)
}
