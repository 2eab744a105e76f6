package model

import (
	"github.com/shopspring/decimal"
)

func init() {
	// The web app and the UI both expect plain JSON numbers for money.
	decimal.MarshalJSONWithoutQuotes = true
}

// TransactionType distinguishes quotations from finalized sales statements
type TransactionType string

const (
	TransactionTypeQuotation TransactionType = "QUOTATION"
	TransactionTypeStatement TransactionType = "STATEMENT"
)

// Label returns the document label written to the sheet's doc-type column
func (t TransactionType) Label() string {
	if t == TransactionTypeQuotation {
		return QuotationLabel
	}
	return StatementLabel
}

// ReportLabel returns the short label used in sales report rows
func (t TransactionType) ReportLabel() string {
	if t == TransactionTypeStatement {
		return "매출"
	}
	return "견적"
}

func (t TransactionType) IsValid() bool {
	return t == TransactionTypeQuotation || t == TransactionTypeStatement
}

const (
	QuotationLabel = "견적서"
	StatementLabel = "거래명세서"
)

// TypeFromLabel maps the sheet's doc-type cell to a TransactionType.
// Only an exact quotation label yields a quotation.
func TypeFromLabel(label string) TransactionType {
	if label == QuotationLabel {
		return TransactionTypeQuotation
	}
	return TransactionTypeStatement
}

type Client struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	RegistrationNumber string `json:"registrationNumber"`
	OwnerName          string `json:"ownerName"`
	Address            string `json:"address"`
	ContactPerson      string `json:"contactPerson"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Note               string `json:"note,omitempty"`
}

type Employee struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Position       string `json:"position"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	SignatureImage string `json:"signatureImage,omitempty"`
}

type ProductItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Spec      string          `json:"spec"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// TransactionItem is a single line of a transaction. SupplyPrice and Tax are
// taken from the source as-is.
type TransactionItem struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Spec        string          `json:"spec"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	SupplyPrice decimal.Decimal `json:"supplyPrice"`
	Tax         decimal.Decimal `json:"tax"`
}

type Transaction struct {
	ID               string            `json:"id"`
	Date             string            `json:"date"`
	Type             TransactionType   `json:"type"`
	ClientID         string            `json:"clientId"`
	ClientName       string            `json:"clientName"`
	ContactPerson    string            `json:"contactPerson,omitempty"`
	Floor            string            `json:"floor,omitempty"`
	Items            []TransactionItem `json:"items"`
	TotalSupplyPrice decimal.Decimal   `json:"totalSupplyPrice"`
	TotalTax         decimal.Decimal   `json:"totalTax"`
	TotalAmount      decimal.Decimal   `json:"totalAmount"`
	IsPaid           bool              `json:"isPaid"`
	Memo             string            `json:"memo,omitempty"`
}

// CompanyInfo is the operator's own office record plus the sheet settings
// used when syncing.
type CompanyInfo struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registrationNumber"`
	OwnerName          string `json:"ownerName"`
	Address            string `json:"address"`
	Phone              string `json:"phone"`
	Fax                string `json:"fax,omitempty"`
	Email              string `json:"email"`
	BankInfo           string `json:"bankInfo,omitempty"`
	StampImage         string `json:"stampImage,omitempty"`
	ProductSheetName   string `json:"productSheetName,omitempty"`
	CompanySheetName   string `json:"companySheetName,omitempty"`
	EmployeeSheetName  string `json:"employeeSheetName,omitempty"`
	OfficeSheetName    string `json:"officeSheetName,omitempty"`
	GoogleScriptURL    string `json:"googleScriptUrl,omitempty"`
}

const (
	DefaultProductSheet  = "info"
	DefaultCompanySheet  = "company"
	DefaultEmployeeSheet = "employee"
	DefaultOfficeSheet   = "office"
)

func (c CompanyInfo) ProductSheet() string {
	return firstNonEmpty(c.ProductSheetName, DefaultProductSheet)
}

func (c CompanyInfo) CompanySheet() string {
	return firstNonEmpty(c.CompanySheetName, DefaultCompanySheet)
}

func (c CompanyInfo) EmployeeSheet() string {
	return firstNonEmpty(c.EmployeeSheetName, DefaultEmployeeSheet)
}

func (c CompanyInfo) OfficeSheet() string {
	return firstNonEmpty(c.OfficeSheetName, DefaultOfficeSheet)
}

// MergeOffice overlays the office fields read from the sheet while keeping the
// local sync settings.
func (c CompanyInfo) MergeOffice(office CompanyInfo) CompanyInfo {
	merged := c
	merged.Name = office.Name
	merged.RegistrationNumber = office.RegistrationNumber
	merged.OwnerName = office.OwnerName
	merged.Address = office.Address
	merged.Phone = office.Phone
	merged.Email = office.Email
	merged.Fax = office.Fax
	merged.BankInfo = office.BankInfo
	merged.StampImage = office.StampImage
	return merged
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
