// Command granular-step runs a single outer mechanical step of the
// pedestrian contact engine: it reads the Parameters, Materials, Geometry,
// Agents and Dynamics files, loads whatever AgentInteractions history
// exists, advances the world by one Dt, and writes the post-step Dynamics
// and AgentInteractions files back out. Every invocation is one process;
// state persists across invocations entirely through those files.
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/odufour7/granular/granular"
	"github.com/odufour7/granular/internal/config"
	"github.com/odufour7/granular/internal/report"
	"github.com/odufour7/granular/xmlio"
)

var (
	parametersPath   = flag.String("parameters", "", "path to the Parameters XML file (required)")
	materialsPath    = flag.String("materials", "", "path to the Materials XML file (required)")
	geometryPath     = flag.String("geometry", "", "path to the Geometry XML file (required)")
	agentsPath       = flag.String("agents", "", "path to the Agents XML file (required)")
	dynamicsPath     = flag.String("dynamics", "", "path to the Dynamics XML file (required, read and rewritten)")
	interactionsPath = flag.String("interactions", "", "path to the AgentInteractions XML file (read and rewritten; created if absent)")
	tuningPath       = flag.String("tuning", "", "optional yaml engine-tuning file overriding v_max and the activation gate's tolerances")
	verbose          = flag.Bool("v", false, "print a one-line diagnostics summary after stepping")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		var stepErr *granular.StepError
		if errors.As(err, &stepErr) {
			slog.Error("granular-step failed", "kind", stepErr.Kind.String(), "err", stepErr.Err)
		} else {
			slog.Error("granular-step failed", "err", err)
		}
		os.Exit(1)
	}
}

func run() error {
	for name, p := range map[string]*string{
		"parameters": parametersPath, "materials": materialsPath, "geometry": geometryPath,
		"agents": agentsPath, "dynamics": dynamicsPath,
	} {
		if *p == "" {
			return granular.NewStepError(granular.MalformedInput, "missing required -%s flag", name)
		}
	}

	wire, err := xmlio.LoadParameters(*parametersPath)
	if err != nil {
		return err
	}
	tuning, err := config.Load(*tuningPath)
	if err != nil {
		return err
	}
	params := granular.StepParams{
		Dt:         wire.Dt,
		DtMech:     wire.DtMech,
		VMax:       tuning.VMax,
		Activation: tuning.ActivationParams(),
	}

	world := granular.NewWorld()
	if err := xmlio.LoadMaterials(world, *materialsPath); err != nil {
		return err
	}
	if err := xmlio.LoadGeometry(world, *geometryPath); err != nil {
		return err
	}
	if err := xmlio.LoadAgents(world, *agentsPath); err != nil {
		return err
	}
	world.Finalize()

	if err := xmlio.LoadDynamics(world, *dynamicsPath); err != nil {
		return err
	}

	hist := granular.NewHistory()
	if *interactionsPath != "" {
		if err := xmlio.LoadInteractions(world, hist, *interactionsPath); err != nil {
			var stepErr *granular.StepError
			if errors.As(err, &stepErr) && stepErr.Kind == granular.ContactInputCorrupt {
				slog.Warn("granular-step: discarding unreadable AgentInteractions file", "path", *interactionsPath, "err", stepErr.Err)
			} else {
				return err
			}
		}
	}

	activeCount, err := granular.Step(world, hist, granular.NewNeighbourhood(), params)
	if err != nil {
		return err
	}

	if err := xmlio.WriteDynamics(world, *dynamicsPath); err != nil {
		return err
	}
	if *interactionsPath != "" && hist.HasOutput() {
		err := xmlio.WithInteractionsLock(*interactionsPath, func() error {
			return xmlio.WriteInteractions(world, hist, *interactionsPath)
		})
		if err != nil {
			return err
		}
	}

	if *verbose {
		report.Write(os.Stdout, report.Summarize(world, hist, activeCount))
	}
	return nil
}
