package models

// Category is the closed set of document kinds the coherence checks know how
// to compare. Adding a category means adding a constant here and a comparator
// in the coherence engine.
type Category string

const (
	CategoryIdentity        Category = "identity"
	CategoryTaxRegistration Category = "tax_registration"
	CategoryNationalID      Category = "national_id"
	CategoryProofOfAddress  Category = "proof_of_address"
	CategoryIncorporation   Category = "incorporation"
	CategoryIncomeProof     Category = "income_proof"
	CategoryBankStatement   Category = "bank_statement"
	CategoryOther           Category = "other"
)

var validCategories = map[Category]bool{
	CategoryIdentity:        true,
	CategoryTaxRegistration: true,
	CategoryNationalID:      true,
	CategoryProofOfAddress:  true,
	CategoryIncorporation:   true,
	CategoryIncomeProof:     true,
	CategoryBankStatement:   true,
	CategoryOther:           true,
}

func (c Category) IsValid() bool {
	return validCategories[c]
}

func (c Category) String() string {
	return string(c)
}
