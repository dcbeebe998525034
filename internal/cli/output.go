package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/permission"
)

// printJSON writes v indented.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// column truncates s to width runes for table output.
func column(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-1]) + "…"
}

// idWidth returns the widest id among ids, at least len("ID").
func idWidth(ids []string) int {
	w := 2
	for _, id := range ids {
		if len(id) > w {
			w = len(id)
		}
	}
	return w
}

func printDatasets(w io.Writer, items []models.Dataset) {
	ids := make([]string, len(items))
	for i, d := range items {
		ids[i] = d.ID
	}
	width := idWidth(ids)
	fmt.Fprintf(w, "  %-*s  %-9s  %s\n", width, "ID", "STATUS", "TITLE")
	for _, d := range items {
		fmt.Fprintf(w, "  %-*s  %-9s  %s\n", width, d.ID, d.Status, column(d.Title, 60))
	}
}

func printResearchOutputs(w io.Writer, items []models.ResearchOutput) {
	ids := make([]string, len(items))
	for i, o := range items {
		ids[i] = o.ID
	}
	width := idWidth(ids)
	fmt.Fprintf(w, "  %-*s  %-9s  %-10s  %s\n", width, "ID", "STATUS", "TYPE", "TITLE")
	for _, o := range items {
		fmt.Fprintf(w, "  %-*s  %-9s  %-10s  %s\n", width, o.ID, o.Status, column(o.Type, 10), column(o.Title, 50))
	}
}

func printApplications(w io.Writer, items []models.Application) {
	ids := make([]string, len(items))
	for i, a := range items {
		ids[i] = a.ID
	}
	width := idWidth(ids)
	fmt.Fprintf(w, "  %-*s  %-9s  %-16s  %s\n", width, "ID", "STATUS", "APPLICANT", "DATASET")
	for _, a := range items {
		applicant := a.ApplicantName
		if applicant == "" {
			applicant = a.ApplicantID
		}
		dataset := a.DatasetTitle
		if dataset == "" {
			dataset = a.DatasetID
		}
		fmt.Fprintf(w, "  %-*s  %-9s  %-16s  %s\n", width, a.ID, a.Status, column(applicant, 16), column(dataset, 50))
	}
}

func printUsers(w io.Writer, items []models.User) {
	ids := make([]string, len(items))
	for i, u := range items {
		ids[i] = u.ID
	}
	width := idWidth(ids)
	fmt.Fprintf(w, "  %-*s  %-16s  %s\n", width, "ID", "NAME", "PHONE")
	for _, u := range items {
		name := u.RealName
		if name == "" {
			name = u.Username
		}
		fmt.Fprintf(w, "  %-*s  %-16s  %s\n", width, u.ID, column(name, 16), u.Phone)
	}
}

// roleLabels renders roles by their display names.
func roleLabels(roles []models.Role) string {
	if len(roles) == 0 {
		return "(none)"
	}
	labels := make([]string, len(roles))
	for i, r := range roles {
		labels[i] = permission.RoleDisplayName(r)
	}
	return strings.Join(labels, ", ")
}

// parseRoles accepts role codes (DATASET_APPROVER) or display names.
func parseRoles(args []string) ([]models.Role, error) {
	var roles []models.Role
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if r := models.Role(strings.ToUpper(part)); r.IsKnown() {
				roles = append(roles, r)
				continue
			}
			if r, ok := permission.RoleFromDisplayName(part); ok {
				roles = append(roles, r)
				continue
			}
			return nil, fmt.Errorf("unknown role %q", part)
		}
	}
	return roles, nil
}
