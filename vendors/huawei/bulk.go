package huawei

import (
	"context"
	"errors"

	"github.com/nanoncore/olt-console/metrics"
	"github.com/nanoncore/olt-console/types"
)

// ProvisionBatch adds each ONT and then its ServicePorts, in order, on one
// session. An item whose service ports do not validate is not sent at all. A failed item is recorded and the batch moves on; only a
// cancelled context stops it early, failing the remaining items.
func (o *Olt) ProvisionBatch(ctx context.Context, onus []*types.Onu) *types.BulkResult {
	result := &types.BulkResult{
		Results: make([]types.BulkOpResult, 0, len(onus)),
	}

	for _, onu := range onus {
		res := types.BulkOpResult{}
		if onu != nil {
			res.Serial = onu.Serial
		}

		if err := ctx.Err(); err != nil {
			res.Error = err.Error()
			res.ErrorCode = bulkErrorCode(err)
			result.Results = append(result.Results, res)
			result.Failed++
			continue
		}

		err := o.provisionOne(ctx, onu, &res)
		if err != nil {
			res.Error = err.Error()
			res.ErrorCode = bulkErrorCode(err)
			result.Failed++
		} else {
			res.Success = true
			result.Succeeded++
		}
		result.Results = append(result.Results, res)
	}

	o.log.Info().
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("batch provisioning finished")
	return result
}

func (o *Olt) provisionOne(ctx context.Context, onu *types.Onu, res *types.BulkOpResult) error {
	if onu != nil {
		if err := onu.ValidateServicePorts(); err != nil {
			o.metrics.ObserveProvision(o.host, OpAddServicePort, metrics.ResultInvalid)
			return err
		}
	}
	if err := o.AddOnu(ctx, onu); err != nil {
		return err
	}
	if onu.OnuID != nil {
		res.ONUID = *onu.OnuID
	}
	res.PONPort = types.OnuRecord{Frame: *onu.Frame, Board: *onu.Board, Port: *onu.Port}.PONPort()

	for i := range onu.ServicePorts {
		if err := o.AddServicePort(ctx, onu, &onu.ServicePorts[i]); err != nil {
			return err
		}
		res.ServicePorts++
	}
	return nil
}

func bulkErrorCode(err error) string {
	var (
		ve *types.ValidationError
		te *types.TransitionError
		pe *types.ProvisionError
	)
	switch {
	case errors.As(err, &ve):
		return types.ErrCodeValidation
	case types.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return types.ErrCodeTimeout
	case errors.As(err, &te):
		return types.ErrCodeMode
	case errors.As(err, &pe) && pe.Output != "":
		return types.ErrCodeRejected
	}
	return types.ErrCodeUnknown
}
