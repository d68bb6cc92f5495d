package validators

import (
	"go.mongodb.org/mongo-driver/bson"

	"washbook/pkg/model"
)

func statusEnum() []string {
	out := make([]string, 0, len(model.AllStatuses))
	for _, s := range model.AllStatuses {
		out = append(out, string(s))
	}
	return out
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"provider_id",
			"service_id",
			"customer_id",
			"booking_date",
			"start_time",
			"end_time",
			"status",
			"payment_status",
			"price_cents",
			"customer_details",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"provider_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"service_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"customer_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"booking_date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     statusEnum(),
			},

			"payment_status": bson.M{
				"bsonType": "string",
				"enum": []string{
					string(model.PaymentUnpaid),
					string(model.PaymentPaid),
					string(model.PaymentRefunded),
				},
			},

			"price_cents": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"customer_details": bson.M{
				"bsonType": "object",
				"required": []string{"name"},
				"properties": bson.M{
					"name": bson.M{
						"bsonType":  "string",
						"minLength": 2,
						"maxLength": 100,
					},
				},
			},

			"cancellation_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var BookingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "owner", "expires_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"owner": bson.M{
				"bsonType": "string",
			},
			"expires_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
