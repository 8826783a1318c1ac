package gateway

import "context"

// Screen is the UI state the client should show.
type Screen string

const (
	ScreenUnauthenticated  Screen = "UNAUTHENTICATED"
	ScreenPurposeSelection Screen = "PURPOSE_SELECTION"
	ScreenProfileSetup     Screen = "PROFILE_SETUP"
	ScreenMain             Screen = "MAIN"
)

// Resume picks the screen for a client returning with or without a session.
// A signed-in user without a profile restarts at purpose selection; a
// stored profile goes straight to the main screen.
func (g *Gateway) Resume(ctx context.Context, hasSession bool) (Screen, error) {
	if !hasSession {
		return ScreenUnauthenticated, nil
	}
	_, ok, err := g.LoadProfile(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return ScreenPurposeSelection, nil
	}
	return ScreenMain, nil
}
