package captureagent

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/camerakit/captureagent/pkg/camera"
)

// runConverge drives the 3A feedback loop: issue one probe at a time, wait
// for its result to be ingested, and stop when AE, AF and AWB all report
// convergence or the deadline fires. AE is triggered on the first probe; AF
// only once AE has converged, since autofocus needs stable exposure. AWB
// converges passively under auto mode.
func (a *Agent) runConverge(ctx context.Context, job *Job) error {
	cj := job.Converge
	if cj == nil {
		return configErrf("converge job carries no description")
	}

	if err := a.session.Idle(ctx); err != nil {
		return &DeviceError{Err: err}
	}
	out := a.session.DefaultOutput()
	if err := a.session.ConfigureOutput(out); err != nil {
		return &DeviceError{Err: err}
	}

	regionAE, regionAF, regionAWB := resolveRegions(cj.Regions, out.Width, out.Height)
	log.Info().
		Stringer("ae", regionAE).
		Stringer("af", regionAF).
		Stringer("awb", regionAWB).
		Msg("3A regions resolved")

	a.state.Reset()
	// Whatever way this job ends, no probe may stay marked in flight: the
	// dispatcher routes completions by that flag, and a stale probe would
	// misdirect the next job's events.
	defer a.state.clearProbe()
	triggeredAE := false
	triggeredAF := false

	timer := time.NewTimer(a.convergeTimeout)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			return timeoutErrf("3A failed to converge within %s", a.convergeTimeout)
		case <-ctx.Done():
			return timeoutErrf("3A interrupted: %v", ctx.Err())
		case <-a.state.Signal():
		}
		if err := a.state.Err(); err != nil {
			return err
		}
		convergedAE, convergedAF, convergedAWB := a.state.Converged()
		if convergedAE && convergedAF && convergedAWB {
			log.Info().Msg("3A converged")
			return nil
		}

		req := probeRequest(out, regionAE, regionAF, regionAWB)
		if !triggeredAE {
			log.Info().Msg("triggering AE")
			req.Triggers = append(req.Triggers, camera.TriggerAEPrecaptureStart)
			triggeredAE = true
		}
		if !triggeredAF && triggeredAE && convergedAE {
			log.Info().Msg("triggering AF")
			req.Triggers = append(req.Triggers, camera.TriggerAFStart)
			triggeredAF = true
		}

		if err := a.state.MarkProbe(); err != nil {
			return err
		}
		if err := a.session.Submit(req); err != nil {
			return deviceErr(err, "submit probe request")
		}
	}
}

// probeRequest builds the baseline 3A probe: flash off, full auto control,
// preview intent, locks off, with the resolved metering regions.
func probeRequest(out camera.OutputConfig, ae, af, awb camera.Region) *camera.Request {
	req := &camera.Request{Output: out}
	req.Set(camera.KeyFlashMode, camera.FlashOff)
	req.Set(camera.KeyControlMode, camera.ControlModeAuto)
	req.Set(camera.KeyCaptureIntent, camera.IntentPreview)
	req.Set(camera.KeyAEMode, camera.AEModeOn)
	req.Set(camera.KeyAEExposureCompensation, "0")
	req.Set(camera.KeyAELock, "false")
	req.Set(camera.KeyAERegions, ae.String())
	req.Set(camera.KeyAFMode, camera.AFModeAuto)
	req.Set(camera.KeyAFRegions, af.String())
	req.Set(camera.KeyAWBMode, camera.AWBModeAuto)
	req.Set(camera.KeyAWBLock, "false")
	req.Set(camera.KeyAWBRegions, awb.String())
	return req
}
