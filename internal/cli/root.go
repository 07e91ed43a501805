package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"roomfinder/internal/contextkeys"
	"roomfinder/internal/core/domain"
	"roomfinder/internal/core/port"
	"roomfinder/internal/core/search"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// env - состояние одного запуска: флаги корня и собранные сервисы.
type env struct {
	factory  Factory
	envPath  string
	jsonOut  bool
	services *Services
	closeFn  func() error
}

// NewRootCommand строит дерево команд.
func NewRootCommand(factory Factory) *cobra.Command {
	return newRootCommand(&env{factory: factory})
}

func newRootCommand(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "roomfinder",
		Short:         "Find rooms for rent and manage your listings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return e.teardown()
		},
	}

	root.PersistentFlags().StringVar(&e.envPath, "env", "", "path to a .env file")
	root.PersistentFlags().BoolVar(&e.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		newLoginCmd(e),
		newRegisterCmd(e),
		newLogoutCmd(e),
		newWhoAmICmd(e),
		newSearchCmd(e),
		newOptionsCmd(e),
		newRoomCmd(e),
		newRoomsCmd(e),
		newLocationsCmd(e),
		newServeCmd(e),
	)
	return root
}

func (e *env) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	services, closeFn, err := e.factory(ctx, e.envPath)
	if err != nil {
		return err
	}
	e.services, e.closeFn = services, closeFn

	traceID := uuid.New().String()
	logger := services.Logger
	if logger == nil {
		logger = contextkeys.NoopLogger()
	}
	ctx = contextkeys.ContextWithLogger(ctx, logger.WithFields(port.Fields{
		"trace_id": traceID,
		"command":  cmd.CommandPath(),
	}))
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)
	cmd.SetContext(ctx)
	return nil
}

func (e *env) teardown() error {
	if e.closeFn == nil {
		return nil
	}
	err := e.closeFn()
	e.closeFn = nil
	return err
}

// Execute запускает CLI и возвращает код выхода. Ошибки печатаются в stderr.
func Execute(ctx context.Context, factory Factory, args []string, stdout, stderr io.Writer) int {
	e := &env{factory: factory}
	defer e.teardown()

	root := newRootCommand(e)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, FormatError(err))
		return 1
	}
	return 0
}

// FormatError - сообщение об ошибке для человека.
func FormatError(err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		return "Session expired. Please log in again: roomfinder login"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "You are not logged in. Run: roomfinder login"
	case errors.Is(err, domain.ErrLoginRequired):
		return "Registration succeeded. Please log in: roomfinder login"
	case errors.Is(err, domain.ErrLandlordOnly):
		return "Only landlords can manage rooms."
	case errors.Is(err, domain.ErrConnection):
		return "Connection error: the server is unreachable."
	case errors.Is(err, search.ErrNoActiveSearch):
		return "Run a search first."
	case errors.As(err, &ve):
		if len(ve.Fields) == 0 {
			return "Error: " + ve.Message
		}
		keys := make([]string, 0, len(ve.Fields))
		for k := range ve.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString("Please fix the following:")
		for _, k := range keys {
			fmt.Fprintf(&b, "\n  %s: %s", k, ve.Fields[k])
		}
		return b.String()
	}
	return "Error: " + err.Error()
}
