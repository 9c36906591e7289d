package commands

import (
	"context"

	"batchplant/internal/core/domain/services"
	"batchplant/internal/core/ports"
	"batchplant/internal/pkg/errs"
)

// LogRunCommandHandler creates the run for a completed batch and stamps its
// rows, in one transaction.
//
// A repeated request for the same range and vehicle returns the existing run
// with Created=false and writes nothing.
//
// Example:
//
//	handler := NewLogRunCommandHandler(uowFactory, vehicles, assigner)
//	cmd, _ := NewLogRunCommand(orderID, 1, 15, nil, "", time.Now())
//	a, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, services.ErrBatchIncomplete):
//	    log.Println("batch is still being produced")
//	case err != nil:
//	    log.Printf("run logging failed: %v", err)
//	case a.Created:
//	    log.Printf("run %d logged", a.Run.Seq())
//	}
type LogRunCommandHandler struct {
	uowFactory UoWFactory
	vehicles   ports.VehicleDirectory
	assigner   services.RunAssigner
}

func NewLogRunCommandHandler(
	uowFactory UoWFactory,
	vehicles ports.VehicleDirectory,
	assigner services.RunAssigner,
) LogRunCommandHandler {
	return LogRunCommandHandler{
		uowFactory: uowFactory,
		vehicles:   vehicles,
		assigner:   assigner,
	}
}

// Handle resolves the vehicle and logs the run.
func (h LogRunCommandHandler) Handle(ctx context.Context, cmd LogRunCommand) (services.Assignment, error) {
	if err := cmd.Validate(); err != nil {
		return services.Assignment{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return services.Assignment{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	runRepo := uow.RunRepository()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return services.Assignment{}, err
	}

	batches, err := h.assigner.Batches(o)
	if err != nil {
		return services.Assignment{}, err
	}
	batch, ok := services.BatchOfRow(batches, cmd.StartSeq())
	if !ok {
		return services.Assignment{}, errs.NewObjectNotFoundError("rowSeq", cmd.StartSeq())
	}

	if selected := cmd.VehicleID(); selected != nil {
		if _, err = h.vehicles.Get(ctx, *selected); err != nil {
			return services.Assignment{}, err
		}
	}
	fleet, err := h.vehicles.List(ctx)
	if err != nil {
		return services.Assignment{}, err
	}
	vehicleID, err := h.assigner.AssignVehicle(batch, fleet, cmd.VehicleID())
	if err != nil {
		return services.Assignment{}, err
	}

	existing, err := runRepo.ListByOrder(ctx, o.ID())
	if err != nil {
		return services.Assignment{}, err
	}

	a, err := h.assigner.LogRun(o, cmd.StartSeq(), cmd.EndSeq(), vehicleID, cmd.Note(), existing, cmd.At())
	if err != nil {
		return services.Assignment{}, err
	}
	if !a.Created {
		return a, nil
	}

	if err = runRepo.Add(ctx, a.Run); err != nil {
		return services.Assignment{}, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return services.Assignment{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return services.Assignment{}, err
	}

	return a, nil
}
