package voice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	studio "github.com/twilio/twilio-go/rest/studio/v2"
)

// Caller совершает голосовой вызов
type Caller interface {
	Call(ctx context.Context, alert Alert) error
}

// flowExecutor - часть Studio API, которой пользуется TwilioCaller
type flowExecutor interface {
	CreateExecution(flowSid string, params *studio.CreateExecutionParams) (*studio.StudioV2Execution, error)
}

// TwilioCaller запускает Studio Flow, который зачитывает водителю вызов
type TwilioCaller struct {
	flows   flowExecutor
	flowSID string
	from    string
}

func NewTwilioCaller(accountSID, authToken, flowSID, from string, timeout time.Duration) *TwilioCaller {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return newTwilioCaller(client.StudioV2, flowSID, from)
}

func newTwilioCaller(flows flowExecutor, flowSID, from string) *TwilioCaller {
	return &TwilioCaller{flows: flows, flowSID: flowSID, from: from}
}

// Call создает execution Studio Flow с параметрами driverName и vehicleID.
// SDK не принимает контекст, поэтому отмена проверяется до запроса.
func (c *TwilioCaller) Call(ctx context.Context, alert Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &studio.CreateExecutionParams{}
	params.SetTo(alert.Phone)
	params.SetFrom(c.from)
	params.SetParameters(map[string]interface{}{
		"driverName": alert.DriverName,
		"vehicleID":  alert.VehicleCode,
	})

	execution, err := c.flows.CreateExecution(c.flowSID, params)
	if err != nil {
		return fmt.Errorf("failed to create twilio flow execution: %w", err)
	}
	if execution == nil || execution.Sid == nil {
		return errors.New("twilio returned an empty flow execution")
	}
	return nil
}
