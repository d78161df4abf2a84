package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/kitchenscreen/pkg/enums/orderstatus"
	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/appetiteclub/kitchenscreen/pkg/lifecycle"
	"github.com/aquamarinepk/aqm"
)

var ErrUnknownCommand = errors.New("unknown command")

type EntityKind string

const (
	EntityOrder EntityKind = "order"
	EntityLine  EntityKind = "line"
)

// ActionToggle is the only action on a line.
const ActionToggle = "toggle"

// Command is a button press on the board.
type Command struct {
	EntityKind EntityKind `json:"entity_kind"`
	EntityID   int64      `json:"entity_id"`
	Action     string     `json:"action"`
}

// Board is what the kitchen screen renders.
type Board struct {
	ShopID      int64       `json:"shop_id"`
	Counts      Counts      `json:"counts"`
	ActiveStage string      `json:"active_stage"`
	Orders      []LaneOrder `json:"orders"`
}

// ViewModel drives the kitchen board. Mutations call the kitchen first and
// touch local state only after it answered successfully.
type ViewModel struct {
	state    *State
	gateway  gateway.Gateway
	notifier Notifier
	logger   aqm.Logger
}

func NewViewModel(state *State, gw gateway.Gateway, notifier Notifier, logger aqm.Logger) *ViewModel {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &ViewModel{
		state:    state,
		gateway:  gw,
		notifier: notifier,
		logger:   logger,
	}
}

func (vm *ViewModel) ShowDraft() {
	_ = vm.state.SetActiveStage(orderstatus.Statuses.Draft)
}

func (vm *ViewModel) ShowWaiting() {
	_ = vm.state.SetActiveStage(orderstatus.Statuses.Waiting)
}

func (vm *ViewModel) ShowReady() {
	_ = vm.state.SetActiveStage(orderstatus.Statuses.Ready)
}

// ShowStage selects a lane by name.
func (vm *ViewModel) ShowStage(name string) error {
	stage := orderstatus.StageByName(name)
	if stage == nil {
		return fmt.Errorf("%w: %q", ErrUnknownStage, name)
	}
	return vm.state.SetActiveStage(*stage)
}

func (vm *ViewModel) AcceptOrder(ctx context.Context, orderID int64) error {
	return vm.transitionOrder(ctx, orderID, lifecycle.Actions.Accept)
}

func (vm *ViewModel) CancelOrder(ctx context.Context, orderID int64) error {
	return vm.transitionOrder(ctx, orderID, lifecycle.Actions.Cancel)
}

func (vm *ViewModel) MarkOrderDone(ctx context.Context, orderID int64) error {
	return vm.transitionOrder(ctx, orderID, lifecycle.Actions.Done)
}

func (vm *ViewModel) transitionOrder(ctx context.Context, orderID int64, action lifecycle.Action) error {
	if err := vm.gateway.TransitionOrder(ctx, orderID, action); err != nil {
		vm.logger.Error("order action failed", "order_id", orderID, "action", action.Code(), "error", err)
		vm.notify(ctx, LevelWarning, "Kitchen Order Error", fmt.Sprintf("Could not %s order %d: %v", action.Code(), orderID, err))
		return err
	}

	if !vm.state.SetOrderStatus(orderID, action.Target()) {
		vm.logger.Debug("order not in projection", "order_id", orderID)
	}
	return nil
}

func (vm *ViewModel) ToggleLine(ctx context.Context, lineID int64) error {
	if err := vm.gateway.TransitionLine(ctx, lineID); err != nil {
		vm.logger.Error("line toggle failed", "line_id", lineID, "error", err)
		vm.notify(ctx, LevelWarning, "Kitchen Order Error", fmt.Sprintf("Could not update line %d: %v", lineID, err))
		return err
	}

	if _, ok := vm.state.ToggleLineStatus(lineID); !ok {
		vm.logger.Debug("line not in projection", "line_id", lineID)
	}
	return nil
}

// Dispatch runs a board command.
func (vm *ViewModel) Dispatch(ctx context.Context, cmd Command) error {
	switch cmd.EntityKind {
	case EntityOrder:
		action := lifecycle.ActionByName(cmd.Action)
		if action == nil {
			return fmt.Errorf("%w: order action %q", ErrUnknownCommand, cmd.Action)
		}
		return vm.transitionOrder(ctx, cmd.EntityID, *action)
	case EntityLine:
		if cmd.Action != ActionToggle {
			return fmt.Errorf("%w: line action %q", ErrUnknownCommand, cmd.Action)
		}
		return vm.ToggleLine(ctx, cmd.EntityID)
	default:
		return fmt.Errorf("%w: entity kind %q", ErrUnknownCommand, cmd.EntityKind)
	}
}

func (vm *ViewModel) Board() Board {
	return vm.state.Board()
}

func (vm *ViewModel) notify(ctx context.Context, level Level, title, message string) {
	if vm.notifier == nil {
		return
	}
	vm.notifier.Notify(ctx, Notice{Level: level, Title: title, Message: message})
}
