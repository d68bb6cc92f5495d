package validators

import "go.mongodb.org/mongo-driver/bson"

var ProviderValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"name",
			"time_zone",
			"weekly_hours",
			"version",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"time_zone": bson.M{
				"bsonType": "string",
			},

			"auto_accept": bson.M{
				"bsonType": "bool",
			},

			"weekly_hours": bson.M{
				"bsonType": "array",
				"maxItems": 7,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"day", "is_open"},
					"properties": bson.M{
						"day": bson.M{
							"bsonType": "string",
						},
						"open": bson.M{
							"bsonType": "string",
							"pattern":  `^([01][0-9]|2[0-3]):[0-5][0-9]$`,
						},
						"close": bson.M{
							"bsonType": "string",
							"pattern":  `^([01][0-9]|2[0-3]):[0-5][0-9]$`,
						},
						"is_open": bson.M{
							"bsonType": "bool",
						},
					},
				},
			},

			"overrides": bson.M{
				"bsonType": "object",
			},

			"version": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
		},
	},
}

var ServiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"provider_id",
			"name",
			"duration_minutes",
			"max_capacity",
			"active",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"provider_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"duration_minutes": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  1440,
			},

			"max_capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  200,
			},

			"price_cents": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"active": bson.M{
				"bsonType": "bool",
			},
		},
	},
}
