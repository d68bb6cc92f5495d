package sanitizer

import "washbook/pkg/model"

func NormalizeCustomer(c model.CustomerDetails, region string) model.CustomerDetails {
	return model.CustomerDetails{
		Name:    NormalizeName(c.Name),
		Phone:   NormalizePhone(c.Phone, region),
		Email:   NormalizeEmail(c.Email),
		Vehicle: NormalizeVehicle(c.Vehicle),
		Notes:   NormalizeNotes(c.Notes),
	}
}
