package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	prodTypes "github.com/makifarslan/Mini-Farm/internal/application/production/types"
	"github.com/makifarslan/Mini-Farm/internal/domain/production"
)

func printFactories(out io.Writer, views []production.View) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMAKES\tSTATUS\tQUEUE\tSTORED\tNEXT\tCONTROLS")
	for _, v := range views {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			v.ID,
			v.Name,
			recipe(v),
			v.StatusLabel,
			v.QueueLabel,
			v.Stored,
			orDash(v.RemainingLabel),
			controlsLabel(v),
		)
	}
	w.Flush()
}

func printFactory(out io.Writer, v production.View) {
	fmt.Fprintf(out, "%s (#%d)\n", v.Name, v.ID)
	fmt.Fprintf(out, "  Makes:      %s\n", recipe(v))
	fmt.Fprintf(out, "  Status:     %s\n", v.StatusLabel)
	fmt.Fprintf(out, "  Queue:      %s\n", v.QueueLabel)
	fmt.Fprintf(out, "  Stored:     %d\n", v.Stored)
	if v.Producing {
		fmt.Fprintf(out, "  Next unit:  %s (%.0f%% left)\n", v.RemainingLabel, v.FractionRemaining*100)
	}
}

func printResources(out io.Writer, resources []prodTypes.ResourceDTO) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RESOURCE\tAMOUNT")
	for _, r := range resources {
		fmt.Fprintf(w, "%s\t%d\n", r.Kind, r.Amount)
	}
	w.Flush()
}

func recipe(v production.View) string {
	if v.Variant == production.VariantContinuous {
		return v.Produced
	}
	return fmt.Sprintf("%d %s -> %s", v.RequiredAmount, v.Required, v.Produced)
}

func controlsLabel(v production.View) string {
	if v.ControlsOpen {
		return "open"
	}
	return "-"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
