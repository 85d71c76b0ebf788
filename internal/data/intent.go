package data

import (
	"context"
	"fmt"
)

// Intent is a user request to change or navigate the list.
// The set is closed: only the types in this file implement it.
type Intent interface {
	isIntent()
}

type (
	// CreateIntent adds a task titled Text.
	CreateIntent struct {
		Text        string
		Description *string
	}

	// ToggleIntent marks task ID completed.
	ToggleIntent struct{ ID int64 }

	// EditIntent renames task ID. A nil Title means the edit was cancelled.
	EditIntent struct {
		ID    int64
		Title *string
	}

	// DeleteIntent removes task ID.
	DeleteIntent struct{ ID int64 }

	// DescribeIntent sets the description of task ID.
	DescribeIntent struct {
		ID   int64
		Text string
	}

	// ChangePageIntent moves to page Page.
	ChangePageIntent struct{ Page int }

	// RefreshIntent re-pulls the list from the remote.
	RefreshIntent struct{}
)

func (CreateIntent) isIntent()     {}
func (ToggleIntent) isIntent()     {}
func (EditIntent) isIntent()       {}
func (DeleteIntent) isIntent()     {}
func (DescribeIntent) isIntent()   {}
func (ChangePageIntent) isIntent() {}
func (RefreshIntent) isIntent()    {}

// Dispatch routes an intent to its handler.
func (c *Controller) Dispatch(ctx context.Context, in Intent) error {
	switch in := in.(type) {
	case CreateIntent:
		return c.Create(ctx, in.Text, in.Description)
	case ToggleIntent:
		return c.Toggle(ctx, in.ID)
	case EditIntent:
		return c.Edit(ctx, in.ID, in.Title)
	case DeleteIntent:
		return c.Delete(ctx, in.ID)
	case DescribeIntent:
		return c.SetDescription(ctx, in.ID, in.Text)
	case ChangePageIntent:
		c.ChangePage(in.Page)
		return nil
	case RefreshIntent:
		return c.Refresh(ctx)
	default:
		return fmt.Errorf("data: unknown intent %T", in)
	}
}
