package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	prodTypes "github.com/makifarslan/Mini-Farm/internal/application/production/types"
	"github.com/makifarslan/Mini-Farm/internal/application/simulation"
	"github.com/makifarslan/Mini-Farm/internal/domain/production"
	"github.com/makifarslan/Mini-Farm/internal/domain/resource"
)

// ErrDaemonUnavailable is returned when the running farm cannot take the
// request, because it is shutting down or the socket is gone
var ErrDaemonUnavailable = errors.New("farm daemon unavailable")

// structpb.NewStruct only accepts plain Go values, so named types such as
// FactoryID and Variant are converted here.
func viewToMap(v production.View) map[string]interface{} {
	return map[string]interface{}{
		"id":                 int(v.ID),
		"name":               v.Name,
		"variant":            string(v.Variant),
		"produced":           v.Produced,
		"required":           v.Required,
		"required_amount":    v.RequiredAmount,
		"stored":             v.Stored,
		"queue":              v.Queue,
		"capacity":           v.Capacity,
		"queue_label":        v.QueueLabel,
		"status_label":       v.StatusLabel,
		"remaining_label":    v.RemainingLabel,
		"fraction_remaining": v.FractionRemaining,
		"producing":          v.Producing,
		"can_enqueue":        v.CanEnqueue,
		"can_cancel":         v.CanCancel,
		"can_collect":        v.CanCollect,
		"controls_open":      v.ControlsOpen,
	}
}

func viewFromStruct(s *structpb.Struct) production.View {
	f := s.GetFields()
	return production.View{
		ID:                production.FactoryID(intField(f, "id")),
		Name:              f["name"].GetStringValue(),
		Variant:           production.Variant(f["variant"].GetStringValue()),
		Produced:          f["produced"].GetStringValue(),
		Required:          f["required"].GetStringValue(),
		RequiredAmount:    intField(f, "required_amount"),
		Stored:            intField(f, "stored"),
		Queue:             intField(f, "queue"),
		Capacity:          intField(f, "capacity"),
		QueueLabel:        f["queue_label"].GetStringValue(),
		StatusLabel:       f["status_label"].GetStringValue(),
		RemainingLabel:    f["remaining_label"].GetStringValue(),
		FractionRemaining: f["fraction_remaining"].GetNumberValue(),
		Producing:         f["producing"].GetBoolValue(),
		CanEnqueue:        f["can_enqueue"].GetBoolValue(),
		CanCancel:         f["can_cancel"].GetBoolValue(),
		CanCollect:        f["can_collect"].GetBoolValue(),
		ControlsOpen:      f["controls_open"].GetBoolValue(),
	}
}

func viewsToList(views []production.View) []interface{} {
	list := make([]interface{}, 0, len(views))
	for _, v := range views {
		list = append(list, viewToMap(v))
	}
	return list
}

func viewsFromList(v *structpb.Value) []production.View {
	values := v.GetListValue().GetValues()
	views := make([]production.View, 0, len(values))
	for _, item := range values {
		views = append(views, viewFromStruct(item.GetStructValue()))
	}
	return views
}

func resourcesToList(resources []prodTypes.ResourceDTO) []interface{} {
	list := make([]interface{}, 0, len(resources))
	for _, r := range resources {
		list = append(list, map[string]interface{}{
			"kind":   string(r.Kind),
			"amount": r.Amount,
		})
	}
	return list
}

func resourcesFromList(v *structpb.Value) []prodTypes.ResourceDTO {
	values := v.GetListValue().GetValues()
	resources := make([]prodTypes.ResourceDTO, 0, len(values))
	for _, item := range values {
		f := item.GetStructValue().GetFields()
		resources = append(resources, prodTypes.ResourceDTO{
			Kind:   resource.Kind(f["kind"].GetStringValue()),
			Amount: intField(f, "amount"),
		})
	}
	return resources
}

func factoryRequest(id production.FactoryID, openControls bool) map[string]interface{} {
	return map[string]interface{}{
		"factory_id":    int(id),
		"open_controls": openControls,
	}
}

func factoryIDFrom(s *structpb.Struct) production.FactoryID {
	return production.FactoryID(intField(s.GetFields(), "factory_id"))
}

// intField reads a whole number. Struct numbers are doubles.
func intField(fields map[string]*structpb.Value, key string) int {
	return int(fields[key].GetNumberValue())
}

func toStruct(m map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return s, nil
}

// toStatusError maps application errors onto gRPC codes so the client can
// rebuild them
func toStatusError(err error) error {
	switch {
	case errors.Is(err, production.ErrFactoryNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, simulation.ErrSchedulerStopped):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// remoteError keeps the server's message while matching the local sentinel
type remoteError struct {
	msg    string
	target error
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.target }

func fromStatusError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return &remoteError{msg: st.Message(), target: production.ErrFactoryNotFound}
	case codes.Unavailable:
		return &remoteError{msg: ErrDaemonUnavailable.Error() + ": " + st.Message(), target: ErrDaemonUnavailable}
	case codes.Canceled:
		return &remoteError{msg: st.Message(), target: context.Canceled}
	case codes.DeadlineExceeded:
		return &remoteError{msg: st.Message(), target: context.DeadlineExceeded}
	default:
		return errors.New(st.Message())
	}
}
