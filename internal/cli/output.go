package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"roomfinder/internal/core/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var vnPrinter = message.NewPrinter(language.Vietnamese)

// formatPrice: 2500000 -> "2.500.000 đ".
func formatPrice(v float64) string {
	return vnPrinter.Sprintf("%d đ", int64(v))
}

func formatArea(v float64) string {
	return vnPrinter.Sprintf("%v m²", v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02/01/2006")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func location(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

func printSearchPage(w io.Writer, page domain.SearchPage) error {
	if page.Empty() {
		fmt.Fprintln(w, "No rooms found.")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tAREA\tLOCATION\tPOSTED")
	for _, r := range page.Rooms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Title, formatPrice(r.Price), formatArea(r.Area), location(r.Ward, r.District, r.Province), formatDate(r.CreatedAt))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nPage %d of %d, %d rooms total (%s search)\n", page.Page, page.TotalPages, page.Total, page.Path)
	return nil
}

func printRoomDetail(w io.Writer, r domain.RoomDetail) {
	fmt.Fprintf(w, "%s\n\n", r.Title)
	fmt.Fprintf(w, "Price:    %s / month\n", formatPrice(r.Price))
	fmt.Fprintf(w, "Area:     %s\n", formatArea(r.Area))
	fmt.Fprintf(w, "Status:   %s\n", r.Status)
	address := r.Address.FullAddress
	if address == "" {
		address = location(r.Address.AddressDetail, r.Address.Ward, r.Address.District, r.Address.Province)
	}
	fmt.Fprintf(w, "Address:  %s\n", address)
	fmt.Fprintf(w, "Posted:   %s\n", formatDate(r.CreatedAt))
	if r.Description != "" {
		fmt.Fprintf(w, "\n%s\n", r.Description)
	}
	fmt.Fprintln(w, "\nContact:")
	fmt.Fprintf(w, "  Email:  %s\n", orDash(r.Landlord.Email))
	fmt.Fprintf(w, "  Phone:  %s\n", orDash(r.Landlord.Phone))
	for _, img := range r.Images {
		fmt.Fprintf(w, "  Image:  %s\n", img)
	}
}

func printOwnedRooms(w io.Writer, rooms []domain.OwnedRoom) error {
	if len(rooms) == 0 {
		fmt.Fprintln(w, "You have not posted any rooms yet.")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tAREA\tSTATUS\tLOCATION")
	for _, r := range rooms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Title, formatPrice(r.Price), formatArea(r.Area), r.Status, location(r.Ward, r.District, r.Province))
	}
	return tw.Flush()
}

func printPlaces(w io.Writer, places []domain.Place) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "CODE\tNAME")
	for _, p := range places {
		fmt.Fprintf(tw, "%d\t%s\n", p.Code, p.Name)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
