package rolerequest

import (
	"encoding/json"

	"lankatrails-backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Definition describes one business role: the validation schema its
// extra_data must satisfy on submission, and the provisioning step run
// inside the approval transaction. A nil Provision means approval only
// grants the role. vehicle_owner deliberately has no provisioning step;
// vehicle owners create their profile through the self-service
// endpoint.
type Definition struct {
	Schema    map[string]string
	Provision func(tx *gorm.DB, userID uint, extra map[string]interface{}) error
}

var registry = map[models.RoleName]Definition{
	models.RoleGuide: {
		Schema: map[string]string{
			"name":            "required",
			"nic":             "required",
			"business_mail":   "required,email",
			"contact_numbers": "required",
			"images":          "required",
			"languages":       "required",
			"locations":       "required",
			"description":     "required",
		},
		Provision: provisionGuide,
	},
	models.RoleShopOwner: {
		Schema: map[string]string{
			"name":           "required",
			"nic":            "required",
			"business_mail":  "required,email",
			"contact_number": "required",
		},
		Provision: provisionShopOwner,
	},
	models.RoleHotelOwner: {
		Schema: map[string]string{
			"name":           "required",
			"nic":            "required",
			"business_mail":  "required,email",
			"contact_number": "required",
		},
		Provision: provisionHotelOwner,
	},
	models.RoleVehicleOwner: {
		Schema: map[string]string{
			"name":            "required",
			"nic":             "required",
			"business_mail":   "required,email",
			"contact_numbers": "required",
			"locations":       "required",
			"description":     "required",
		},
		Provision: nil,
	},
}

// Lookup returns the definition for a role name.
func Lookup(name models.RoleName) (Definition, bool) {
	def, ok := registry[name]
	return def, ok
}

func provisionGuide(tx *gorm.DB, userID uint, extra map[string]interface{}) error {
	g := models.Guide{
		UserID:         userID,
		Name:           strField(extra, "name"),
		NIC:            strField(extra, "nic"),
		BusinessMail:   strField(extra, "business_mail"),
		ContactNumbers: jsonField(extra, "contact_numbers"),
		Languages:      jsonField(extra, "languages"),
		Locations:      jsonField(extra, "locations"),
		Description:    strField(extra, "description"),
	}
	if err := tx.Create(&g).Error; err != nil {
		return err
	}

	// Images were already persisted on submission; carry the stored
	// references over to the new profile.
	for i, path := range strSlice(extra, "images") {
		img := models.GuideImage{GuideID: g.ID, ImagePath: path, OrderIndex: i}
		if err := tx.Create(&img).Error; err != nil {
			return err
		}
	}
	return nil
}

func provisionShopOwner(tx *gorm.DB, userID uint, extra map[string]interface{}) error {
	o := models.ShopOwner{
		UserID:        userID,
		Name:          strField(extra, "name"),
		NIC:           strField(extra, "nic"),
		BusinessMail:  strField(extra, "business_mail"),
		ContactNumber: strField(extra, "contact_number"),
	}
	return tx.Create(&o).Error
}

func provisionHotelOwner(tx *gorm.DB, userID uint, extra map[string]interface{}) error {
	o := models.HotelOwner{
		UserID:        userID,
		Name:          strField(extra, "name"),
		NIC:           strField(extra, "nic"),
		BusinessMail:  strField(extra, "business_mail"),
		ContactNumber: strField(extra, "contact_number"),
	}
	return tx.Create(&o).Error
}

func strField(extra map[string]interface{}, key string) string {
	if v, ok := extra[key].(string); ok {
		return v
	}
	return ""
}

func strSlice(extra map[string]interface{}, key string) []string {
	raw, ok := extra[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func jsonField(extra map[string]interface{}, key string) datatypes.JSON {
	v, ok := extra[key]
	if !ok || v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
