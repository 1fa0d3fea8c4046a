// Package oracle defines the double-dummy solver adapter contract (§4.3, §6)
// and a reference in-process implementation. The adapter is the one
// FFI-shaped boundary in this engine: a caller opens a handle on a fully
// specified deal, replays a sequence of plays into it, and asks how many
// tricks the side on lead will take under optimal defense and declarer play.
package oracle

import (
	"errors"
	"fmt"

	"github.com/signalnine/bridgesolve/internal/game"
)

// ErrOracleUnavailable is returned when no oracle implementation could be
// constructed; callers treat this as fatal at load time (§7.4).
var ErrOracleUnavailable = errors.New("oracle: unavailable")

// Oracle opens analysis handles bound to a fully specified deal. hands is
// seat-ordered (North, East, South, West) PBN hand strings.
type Oracle interface {
	New(hands [4]string, strain game.Strain, leader game.Seat) (Handle, error)
}

// Handle is one double-dummy analysis in progress, the wire contract named
// in §6: Exec/GetTricksToTake/Delete. Delete must be called exactly once.
type Handle interface {
	// Exec applies a whitespace-separated sequence of <suit><rank> plays.
	Exec(command string) error
	// GetTricksToTake returns the tricks the side currently on lead holds
	// once the deal is played out with optimal play, in [0, 13]. Tricks
	// completed by earlier Exec replays on this handle count too.
	GetTricksToTake() (int, error)
	// Delete releases any resources held by the handle.
	Delete() error
}

// Tricks is the adapter-level convenience named in §4.3: open a handle on
// deal, replay a trailing sequence of plays, and report the resulting trick
// count for the side on lead. The handle is always released before return.
func Tricks(o Oracle, hands [4]string, strain game.Strain, leader game.Seat, played string) (int, error) {
	h, err := o.New(hands, strain, leader)
	if err != nil {
		return 0, fmt.Errorf("oracle: opening handle: %w", err)
	}
	defer h.Delete()

	if played != "" {
		if err := h.Exec(played); err != nil {
			return 0, fmt.Errorf("oracle: replaying plays: %w", err)
		}
	}
	tricks, err := h.GetTricksToTake()
	if err != nil {
		// Per-call oracle failures are not expected; §7.4 treats them as
		// zero tricks rather than propagating.
		return 0, nil
	}
	return tricks, nil
}
