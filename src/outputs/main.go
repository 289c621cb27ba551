package outputs

import (
	"github.com/PsycoVenom0/security-relay/src/log"
	"github.com/PsycoVenom0/security-relay/src/models"
)

// An Output is notified of every dispatch event, e.g. to publish it on a
// message broker or to push it to connected browsers.
type Output interface {
	Name() string
	// Triggers the integration
	Trigger(event models.Event) error
}

// Execute hands the event to every output. A failing output does not stop
// the others, the last error is returned.
func Execute(outputs []Output, event models.Event) (err error) {
	for _, output := range outputs {
		if output == nil {
			continue
		}
		if triggerErr := output.Trigger(event); triggerErr == nil {
			log.Log.Debug("outputs.main.Execute(" + output.Name() + "): event " + event.ID + " was processed by output.")
		} else {
			log.Log.Error("outputs.main.Execute(" + output.Name() + "): " + triggerErr.Error())
			err = triggerErr
		}
	}
	return err
}
