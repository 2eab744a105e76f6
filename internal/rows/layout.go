package rows

// Field names a semantic column of a sheet. Column positions are fixed per
// sheet kind by a Layout and never inferred from headers.
type Field int

const (
	FieldID Field = iota
	FieldDate
	FieldDocType
	FieldFloor
	FieldClientName
	FieldItemName
	FieldSpec
	FieldUnit
	FieldQuantity
	FieldUnitPrice
	FieldSupplyPrice
	FieldTax
	FieldTotal
	FieldMemo
	FieldTimestamp

	FieldName
	FieldRegistrationNumber
	FieldOwnerName
	FieldAddress
	FieldContactPerson
	FieldEmail
	FieldPhone
	FieldNote
	FieldPosition
	FieldSignatureImage
	FieldFax
	FieldBankInfo
	FieldStampImage
)

// Layout is the ordered list of fields of one sheet kind.
type Layout []Field

// Index returns the column position of f, or -1 when the layout lacks it.
func (l Layout) Index(f Field) int {
	for i, candidate := range l {
		if candidate == f {
			return i
		}
	}
	return -1
}

var (
	// TransactionLayout is the 15-column layout of the data/estimate sheets.
	TransactionLayout = Layout{
		FieldID, FieldDate, FieldDocType, FieldFloor, FieldClientName,
		FieldItemName, FieldSpec, FieldUnit, FieldQuantity, FieldUnitPrice,
		FieldSupplyPrice, FieldTax, FieldTotal, FieldMemo, FieldTimestamp,
	}

	ProductLayout = Layout{FieldName, FieldSpec, FieldUnit, FieldUnitPrice}

	ClientLayout = Layout{
		FieldName, FieldRegistrationNumber, FieldOwnerName, FieldAddress,
		FieldContactPerson, FieldEmail, FieldPhone, FieldNote,
	}

	EmployeeLayout = Layout{FieldName, FieldPosition, FieldEmail, FieldPhone, FieldSignatureImage}

	OfficeLayout = Layout{
		FieldName, FieldRegistrationNumber, FieldOwnerName, FieldAddress,
		FieldPhone, FieldEmail, FieldFax, FieldBankInfo, FieldStampImage,
	}
)
