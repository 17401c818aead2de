package client

import (
	"context"
	"time"

	"dental-clinic/internal/dentist"
	"dental-clinic/internal/models"
)

// recordingUI keeps the messages shown and ignores everything else.
type recordingUI struct {
	messages []string
}

func (u *recordingUI) ShowMessage(text string, _ dentist.MessageKind, _ time.Duration) {
	u.messages = append(u.messages, text)
}
func (u *recordingUI) SetLoadingState(string, string) {}
func (u *recordingUI) ResetLoadingState(string, string) {}
func (u *recordingUI) ClearForm(string) {}
func (u *recordingUI) FillForm(*models.Dentist, dentist.FormMode) {}
func (u *recordingUI) ToggleUpdateSection(bool) {}
func (u *recordingUI) DisplaySearchResults([]*models.Dentist, string) {}
func (u *recordingUI) SetupFormValidation(string) {}
func (u *recordingUI) Navigate(string, time.Duration) {}
func (u *recordingUI) Reload(time.Duration) {}
func (u *recordingUI) ShowDeleteConfirmation(ctx context.Context, _ *models.Dentist, onConfirm func(context.Context)) bool {
	onConfirm(ctx)
	return true
}
