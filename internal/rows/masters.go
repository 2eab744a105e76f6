package rows

import (
	"fmt"
	"regexp"
	"strings"

	"jeongsim_ledger/internal/model"

	"github.com/rs/zerolog/log"
)

// ParseProducts reads the product sheet. Rows without a name are dropped.
func ParseProducts(data []RawRow) []model.ProductItem {
	products := make([]model.ProductItem, 0, len(data))
	for i, cells := range data {
		row := NewRow(ProductLayout, cells)
		p := model.ProductItem{
			ID:        fmt.Sprintf("sheet-prod-%d", i),
			Name:      row.String(FieldName),
			Spec:      row.String(FieldSpec),
			Unit:      row.String(FieldUnit),
			UnitPrice: row.Number(FieldUnitPrice),
		}
		if p.Name == "" {
			continue
		}
		products = append(products, p)
	}
	log.Debug().Int("rows", len(data)).Int("products", len(products)).Msg("Parsed product rows")
	return products
}

// ParseClients reads the company sheet. Rows without a name are dropped.
func ParseClients(data []RawRow) []model.Client {
	clients := make([]model.Client, 0, len(data))
	for i, cells := range data {
		row := NewRow(ClientLayout, cells)
		c := model.Client{
			ID:                 fmt.Sprintf("sheet-client-%d", i),
			Name:               row.String(FieldName),
			RegistrationNumber: row.String(FieldRegistrationNumber),
			OwnerName:          row.String(FieldOwnerName),
			Address:            row.String(FieldAddress),
			ContactPerson:      row.String(FieldContactPerson),
			Email:              row.String(FieldEmail),
			Phone:              row.String(FieldPhone),
			Note:               row.String(FieldNote),
		}
		if c.Name == "" {
			continue
		}
		clients = append(clients, c)
	}
	log.Debug().Int("rows", len(data)).Int("clients", len(clients)).Msg("Parsed client rows")
	return clients
}

// ParseEmployees reads the employee sheet. Rows without a name are dropped.
func ParseEmployees(data []RawRow) []model.Employee {
	employees := make([]model.Employee, 0, len(data))
	for i, cells := range data {
		row := NewRow(EmployeeLayout, cells)
		e := model.Employee{
			ID:             fmt.Sprintf("sheet-emp-%d", i),
			Name:           row.String(FieldName),
			Position:       row.String(FieldPosition),
			Email:          row.String(FieldEmail),
			Phone:          row.String(FieldPhone),
			SignatureImage: DirectImageLink(row.String(FieldSignatureImage)),
		}
		if e.Name == "" {
			continue
		}
		employees = append(employees, e)
	}
	log.Debug().Int("rows", len(data)).Int("employees", len(employees)).Msg("Parsed employee rows")
	return employees
}

// ParseOffice reads the first row of the office sheet. The boolean is false
// when the sheet has no data rows.
func ParseOffice(data []RawRow) (model.CompanyInfo, bool) {
	if len(data) == 0 {
		return model.CompanyInfo{}, false
	}
	row := NewRow(OfficeLayout, data[0])
	return model.CompanyInfo{
		Name:               row.String(FieldName),
		RegistrationNumber: row.String(FieldRegistrationNumber),
		OwnerName:          row.String(FieldOwnerName),
		Address:            row.String(FieldAddress),
		Phone:              row.String(FieldPhone),
		Email:              row.String(FieldEmail),
		Fax:                row.String(FieldFax),
		BankInfo:           row.String(FieldBankInfo),
		StampImage:         DirectImageLink(row.String(FieldStampImage)),
	}, true
}

var (
	imageExtPattern  = regexp.MustCompile(`(?i)\.(jpeg|jpg|gif|png|svg|webp)$`)
	drivePathPattern = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)
	driveIDPattern   = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
)

// DirectImageLink rewrites a Google Drive share link to the thumbnail
// endpoint so it can be embedded as an image. Other links are only trimmed.
func DirectImageLink(raw string) string {
	url := strings.TrimSpace(raw)
	if url == "" || imageExtPattern.MatchString(url) {
		return url
	}
	if !strings.Contains(url, "drive.google.com") && !strings.Contains(url, "docs.google.com") {
		return url
	}

	id := ""
	if m := drivePathPattern.FindStringSubmatch(url); m != nil {
		id = m[1]
	} else if m := driveIDPattern.FindStringSubmatch(url); m != nil {
		id = m[1]
	}
	if id == "" {
		return url
	}
	return fmt.Sprintf("https://drive.google.com/thumbnail?id=%s&sz=w1000", id)
}
