package cli

import (
	"fmt"
	"strconv"

	"roomfinder/internal/core/domain"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRoomCmd(e *env) *cobra.Command {
	room := &cobra.Command{
		Use:   "room",
		Short: "Public room listings",
	}
	room.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a room with the landlord's contacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := e.services.Browse.Detail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), detail)
			}
			printRoomDetail(cmd.OutOrStdout(), detail)
			return nil
		},
	})
	return room
}

// roomFormFlags - флаги формы комнаты. Для update применяются только заданные флаги.
type roomFormFlags struct {
	form domain.RoomForm
}

func (r *roomFormFlags) register(f *pflag.FlagSet) {
	f.StringVar(&r.form.Title, "title", "", "room title")
	f.StringVar(&r.form.Description, "description", "", "description")
	f.StringVar(&r.form.Province, "province", "", "province name")
	f.StringVar(&r.form.District, "district", "", "district name")
	f.StringVar(&r.form.Ward, "ward", "", "ward name")
	f.StringVar(&r.form.AddressDetail, "address", "", "street address")
	f.StringVar(&r.form.Area, "area", "", "area in m²")
	f.StringVar(&r.form.Price, "price", "", "monthly price")
	f.StringVar(&r.form.Status, "status", string(domain.RoomAvailable), "available or rented")
	f.StringSliceVar(&r.form.Images, "image", nil, "image URL (repeatable)")
}

// overlay переносит в base только те поля, чьи флаги были заданы.
func (r *roomFormFlags) overlay(f *pflag.FlagSet, base domain.RoomForm) domain.RoomForm {
	set := map[string]func(){
		"title":       func() { base.Title = r.form.Title },
		"description": func() { base.Description = r.form.Description },
		"province":    func() { base.Province = r.form.Province },
		"district":    func() { base.District = r.form.District },
		"ward":        func() { base.Ward = r.form.Ward },
		"address":     func() { base.AddressDetail = r.form.AddressDetail },
		"area":        func() { base.Area = r.form.Area },
		"price":       func() { base.Price = r.form.Price },
		"status":      func() { base.Status = r.form.Status },
		"image":       func() { base.Images = r.form.Images },
	}
	f.Visit(func(fl *pflag.Flag) {
		if apply, ok := set[fl.Name]; ok {
			apply()
		}
	})
	return base
}

func printSaved(cmd *cobra.Command, e *env, saved domain.SavedRoom) error {
	if e.jsonOut {
		return writeJSON(cmd.OutOrStdout(), saved)
	}
	msg := saved.Message
	if msg == "" {
		msg = "Saved"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", msg, saved.Title, saved.ID)
	return nil
}

func newRoomsCmd(e *env) *cobra.Command {
	rooms := &cobra.Command{
		Use:   "rooms",
		Short: "Manage your own listings (landlords only)",
	}

	rooms.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your rooms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := e.services.Rooms.MyRooms(cmd.Context())
			if err != nil {
				return err
			}
			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			return printOwnedRooms(cmd.OutOrStdout(), list)
		},
	})

	rooms.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one of your rooms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			room, err := e.services.Rooms.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), room)
			}
			return printOwnedRooms(cmd.OutOrStdout(), []domain.OwnedRoom{room})
		},
	})

	createFlags := &roomFormFlags{}
	create := &cobra.Command{
		Use:   "create",
		Short: "Post a new room",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := e.services.Rooms.Create(cmd.Context(), createFlags.form)
			if err != nil {
				return err
			}
			return printSaved(cmd, e, saved)
		},
	}
	createFlags.register(create.Flags())
	rooms.AddCommand(create)

	updateFlags := &roomFormFlags{}
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a room; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := e.services.Rooms.EditForm(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			form := updateFlags.overlay(cmd.Flags(), current)
			saved, err := e.services.Rooms.Update(cmd.Context(), args[0], form)
			if err != nil {
				return err
			}
			return printSaved(cmd, e, saved)
		},
	}
	updateFlags.register(update.Flags())
	rooms.AddCommand(update)

	rooms.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.services.Rooms.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Room %s deleted.\n", args[0])
			return nil
		},
	})

	return rooms
}

func newLocationsCmd(e *env) *cobra.Command {
	locations := &cobra.Command{
		Use:   "locations",
		Short: "Browse provinces, districts and wards",
	}

	printList := func(cmd *cobra.Command, places []domain.Place) error {
		if e.jsonOut {
			return writeJSON(cmd.OutOrStdout(), places)
		}
		return printPlaces(cmd.OutOrStdout(), places)
	}
	code := func(arg string) (int, error) {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return 0, domain.NewValidationError(map[string]string{"code": fmt.Sprintf("%q is not a number", arg)})
		}
		return n, nil
	}

	locations.AddCommand(
		&cobra.Command{
			Use:   "provinces",
			Short: "List provinces",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				places, err := e.services.Geo.Provinces(cmd.Context())
				if err != nil {
					return err
				}
				return printList(cmd, places)
			},
		},
		&cobra.Command{
			Use:   "districts <province-code>",
			Short: "List districts of a province",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := code(args[0])
				if err != nil {
					return err
				}
				places, err := e.services.Geo.Districts(cmd.Context(), c)
				if err != nil {
					return err
				}
				return printList(cmd, places)
			},
		},
		&cobra.Command{
			Use:   "wards <district-code>",
			Short: "List wards of a district",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := code(args[0])
				if err != nil {
					return err
				}
				places, err := e.services.Geo.Wards(cmd.Context(), c)
				if err != nil {
					return err
				}
				return printList(cmd, places)
			},
		},
	)
	return locations
}

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP server for the web interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.services.Serve(cmd.Context())
		},
	}
}
