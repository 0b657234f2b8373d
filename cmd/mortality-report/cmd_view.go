package main

import (
	"fmt"
	"strings"

	"github.com/LilVoxy/coursework_mortality/dashboard"
	"github.com/spf13/cobra"
)

// filterFlags - выбор департамента и главы причин
type filterFlags struct {
	department string
	chapter    string
	markdown   bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.department, "departamento", "", "Фильтр по департаменту")
	fl.StringVar(&f.chapter, "causa", "", "Фильтр по главе причин смерти")
	fl.BoolVar(&f.markdown, "markdown", false, "Вывод в формате Markdown")
}

func (f *filterFlags) filter() dashboard.Filter {
	return dashboard.Filter{Department: f.department, Chapter: f.chapter}
}

func viewNames() string {
	names := make([]string, len(dashboard.Views))
	for i, v := range dashboard.Views {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

func newViewCmd(root *rootFlags) *cobra.Command {
	flags := &filterFlags{}

	cmd := &cobra.Command{
		Use:   "view <name>",
		Short: "Построить представление: " + viewNames(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, ok := dashboard.ParseView(args[0])
			if !ok {
				return fmt.Errorf("неизвестное представление %q (доступные: %s)", args[0], viewNames())
			}

			service, err := loadService(cmd.Context(), root)
			if err != nil {
				return err
			}
			renderView(cmd.OutOrStdout(), service.Query(view, flags.filter()), flags.markdown)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newKPIsCmd(root *rootFlags) *cobra.Command {
	flags := &filterFlags{}

	cmd := &cobra.Command{
		Use:   "kpis",
		Short: "Сводные показатели",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, err := loadService(cmd.Context(), root)
			if err != nil {
				return err
			}
			renderKPIs(cmd.OutOrStdout(), service.KPIs(flags.filter()), flags.markdown)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newOptionsCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Департаменты и главы причин для фильтров",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, err := loadService(cmd.Context(), root)
			if err != nil {
				return err
			}
			opts := service.Options()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Departamentos (%d):\n", len(opts.Departments))
			for _, d := range opts.Departments {
				fmt.Fprintf(out, "  %s\n", d)
			}
			fmt.Fprintf(out, "Causas (%d):\n", len(opts.Chapters))
			for _, c := range opts.Chapters {
				fmt.Fprintf(out, "  %s\n", c)
			}
			return nil
		},
	}
}
