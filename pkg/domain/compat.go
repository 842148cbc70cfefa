package domain

// compatibility is the canonical ABO/Rh chart, keyed donor → eligible
// recipients. Both lookup directions below derive from this one table so the
// two can never disagree.
//
// O− is the universal donor; AB+ is the universal recipient (and can donate
// only to AB+).
var compatibility = map[BloodType][]BloodType{
	BloodTypeONegative: {
		BloodTypeONegative, BloodTypeOPositive,
		BloodTypeANegative, BloodTypeAPositive,
		BloodTypeBNegative, BloodTypeBPositive,
		BloodTypeABNegative, BloodTypeABPositive,
	},
	BloodTypeOPositive: {
		BloodTypeOPositive, BloodTypeAPositive,
		BloodTypeBPositive, BloodTypeABPositive,
	},
	BloodTypeANegative: {
		BloodTypeANegative, BloodTypeAPositive,
		BloodTypeABNegative, BloodTypeABPositive,
	},
	BloodTypeAPositive: {
		BloodTypeAPositive, BloodTypeABPositive,
	},
	BloodTypeBNegative: {
		BloodTypeBNegative, BloodTypeBPositive,
		BloodTypeABNegative, BloodTypeABPositive,
	},
	BloodTypeBPositive: {
		BloodTypeBPositive, BloodTypeABPositive,
	},
	BloodTypeABNegative: {
		BloodTypeABNegative, BloodTypeABPositive,
	},
	BloodTypeABPositive: {
		BloodTypeABPositive,
	},
}

// CanDonateTo reports whether blood from donor may be given to recipient.
func CanDonateTo(donor, recipient BloodType) bool {
	for _, r := range compatibility[donor] {
		if r == recipient {
			return true
		}
	}
	return false
}

// CompatibleDonorTypes returns every donor blood type that may donate to the
// given recipient type, in the stable AllBloodTypes order.
func CompatibleDonorTypes(recipient BloodType) []BloodType {
	var donors []BloodType
	for _, d := range AllBloodTypes {
		if CanDonateTo(d, recipient) {
			donors = append(donors, d)
		}
	}
	return donors
}
