package cli

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"pfeifer.dev/velfilter/chart"
	"pfeifer.dev/velfilter/filter"
	"pfeifer.dev/velfilter/observer"
	"pfeifer.dev/velfilter/params"
	"pfeifer.dev/velfilter/plan"
	"pfeifer.dev/velfilter/settings"
)

// Daemon is run when no subcommand is given.
type Daemon func(ctx context.Context, store *params.Store) error

func Handle(daemon Daemon) {
	if err := NewCommand(os.Stdout, daemon).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func scenarioFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Category: "Inputs and Outputs",
		Name:     "scenario",
		Aliases:  []string{"s"},
		Usage:    "A JSON or YAML scenario file",
		Required: true,
	}
}

func orderFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "order",
		Usage: "Pipeline order, smooth_then_limit or limit_then_smooth. Defaults to the pipeline_order setting",
	}
}

func NewCommand(out io.Writer, daemon Daemon) *cli.Command {
	var store *params.Store
	current := settings.FilterSettings{}

	return &cli.Command{
		Name:  "velfilter",
		Usage: "Start an instance of the velocity filter",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "params-dir",
				Usage: "The directory settings are loaded from and saved to",
				Value: params.ParamsPath,
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			store = params.NewStore(cmd.String("params-dir"))
			current.Load(store)
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "smooth",
				Usage: "Smooth an upper bound velocity profile",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "bound",
						Aliases:  []string{"b"},
						Usage:    "Comma separated upper bound velocities in m/s",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "unit",
						Usage: "Unit of --bound and --initial-vel: ms, kph or mph. Output is always m/s",
						Value: "ms",
					},
					&cli.Float64Flag{Category: "Kinematics", Name: "ds", Usage: "Sample spacing in m. Defaults to the ds setting"},
					&cli.Float64Flag{Category: "Kinematics", Name: "initial-vel", Usage: "Initial velocity in m/s"},
					&cli.Float64Flag{Category: "Kinematics", Name: "initial-acc", Usage: "Initial acceleration in m/s^2"},
					&cli.Float64Flag{Category: "Kinematics", Name: "max-acc", Usage: "Maximum acceleration in m/s^2. Defaults to the max_acc setting"},
					&cli.Float64Flag{Category: "Kinematics", Name: "jerk-acc", Usage: "Acceleration ramp rate. Defaults to the jerk_acc setting"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					scale, err := SpeedScale(cmd.String("unit"))
					if err != nil {
						return err
					}
					bound, err := ParseList(cmd.String("bound"))
					if err != nil {
						return err
					}
					for i := range bound {
						bound[i] *= scale
					}
					sc := plan.Scenario{
						Ds:         cmd.Float64("ds"),
						InitialVel: cmd.Float64("initial-vel") * scale,
						InitialAcc: cmd.Float64("initial-acc"),
						MaxAcc:     cmd.Float64("max-acc"),
						JerkAcc:    cmd.Float64("jerk-acc"),
						UpperBound: bound,
					}.WithDefaults(current)
					vel, acc, err := newFilter(current).Smooth(sc.Ds, sc.InitialVel, sc.InitialAcc, sc.MaxAcc, sc.JerkAcc, sc.UpperBound)
					if err != nil {
						return err
					}
					return writeJSON(out, map[string][]float64{"vel": vel, "acc": acc})
				},
			},
			{
				Name:  "limit",
				Usage: "Limit a scenario's upper bound for its obstacle",
				Flags: []cli.Flag{scenarioFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					sc, err := loadScenario(cmd.String("scenario"), current)
					if err != nil {
						return err
					}
					if sc.Obstacle == nil {
						return errors.New("scenario has no obstacle")
					}
					s, err := sc.Samples()
					if err != nil {
						return err
					}
					limited, err := newFilter(current).LimitObstacle(sc.InitialVel, s, sc.UpperBound, *sc.Obstacle)
					if err != nil {
						return err
					}
					return writeJSON(out, map[string][]float64{"arclength": s, "limited_vel": limited})
				},
			},
			{
				Name:  "plan",
				Usage: "Run the full pipeline on a scenario",
				Flags: []cli.Flag{scenarioFlag(), orderFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					res, err := runScenario(ctx, cmd, current)
					if err != nil {
						return err
					}
					return writeJSON(out, res)
				},
			},
			{
				Name:  "plot",
				Usage: "Draw the profiles of a scenario to an html or png file",
				Flags: []cli.Flag{
					scenarioFlag(),
					orderFlag(),
					&cli.StringFlag{
						Category: "Inputs and Outputs",
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "The chart file, .html or .png",
						Value:    "profile.html",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					res, err := runScenario(ctx, cmd, current)
					if err != nil {
						return err
					}
					return chart.Render(cmd.String("out"), res, cmd.String("scenario"))
				},
			},
			{
				Name:  "view",
				Usage: "Show the profiles of a scenario as a table",
				Flags: []cli.Flag{scenarioFlag(), orderFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					res, err := runScenario(ctx, cmd, current)
					if err != nil {
						return err
					}
					return view(res, cmd.String("scenario"))
				},
			},
			{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Edit the stored settings",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return interactive(store, &current)
				},
			},
			{
				Name:  "settings",
				Usage: "Print the stored settings",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return writeJSON(out, current)
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if daemon == nil {
				return nil
			}
			return daemon(ctx, store)
		},
	}
}

func newFilter(s settings.FilterSettings) *filter.Filter {
	return filter.New(s.FilterConfig(), observer.NewLog(nil))
}

func loadScenario(path string, s settings.FilterSettings) (plan.Scenario, error) {
	sc, err := plan.Load(path)
	if err != nil {
		return sc, err
	}
	return sc.WithDefaults(s), nil
}

func runScenario(ctx context.Context, cmd *cli.Command, s settings.FilterSettings) (plan.Result, error) {
	sc, err := loadScenario(cmd.String("scenario"), s)
	if err != nil {
		return plan.Result{}, err
	}
	orderName := cmd.String("order")
	if orderName == "" {
		orderName = s.PipelineOrder
	}
	order, err := plan.ParseOrder(orderName)
	if err != nil {
		return plan.Result{}, err
	}
	return plan.Run(ctx, newFilter(s), sc, order)
}

// SpeedScale returns the factor converting speeds in unit to m/s.
func SpeedScale(unit string) (float64, error) {
	switch strings.ToLower(unit) {
	case "", "ms", "m/s":
		return 1, nil
	case "kph", "km/h":
		return settings.KPH_TO_MS, nil
	case "mph":
		return settings.MPH_TO_MS, nil
	}
	return 0, errors.Errorf("unknown speed unit %q", unit)
}

// ParseList reads a comma separated list of numbers.
func ParseList(list string) ([]float64, error) {
	fields := strings.Split(list, ",")
	values := make([]float64, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse %q", field)
		}
		values = append(values, v)
	}
	return values, nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "could not write output")
}
