package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/rehab/internal/config"
	"github.com/verte-zerg/rehab/internal/stats"
	"github.com/verte-zerg/rehab/internal/store"
)

var (
	patientName string
	patientAge  int
)

func newPatientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Manage patients",
	}
	cmd.AddCommand(newPatientRegisterCmd())
	cmd.AddCommand(newPatientListCmd())
	return cmd
}

func newPatientRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a patient",
		Args:  cobra.NoArgs,
		RunE:  runPatientRegisterCmd,
	}
	cmd.Flags().StringVar(&patientName, "name", "", "patient name")
	cmd.Flags().IntVar(&patientAge, "age", 0, "patient age")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("age")
	return cmd
}

func runPatientRegisterCmd(cmd *cobra.Command, _ []string) error {
	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := st.RegisterPatient(cmd.Context(), patientName, patientAge)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%d) as %s\n", p.Name, p.Age, p.ID)
	return err
}

func newPatientListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered patients",
		Args:  cobra.NoArgs,
		RunE:  runPatientListCmd,
	}
}

func runPatientListCmd(cmd *cobra.Command, _ []string) error {
	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()

	patients, err := st.ListPatients(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(patients) == 0 {
		_, err := fmt.Fprintln(out, "No patients registered.")
		return err
	}
	rows := make([][]string, 0, len(patients))
	for _, p := range patients {
		rows = append(rows, []string{
			p.Name,
			fmt.Sprintf("%d", p.Age),
			p.CreatedAt.Local().Format("2006-01-02"),
			p.ID,
		})
	}
	for _, line := range stats.FormatTable([]string{"Name", "Age", "Registered", "ID"}, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// openStore opens the default database with a logger built from the config
// file. The returned cleanup closes both.
func openStore() (*store.Store, func(), error) {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return nil, nil, err
	}
	log := newLogger(fileCfg.Log, consoleSink())
	st, err := store.Open(config.DefaultDBPath(), log)
	if err != nil {
		syncLogger(log)
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, func() {
		closeStore(st)
		syncLogger(log)
	}, nil
}
