package validators

import "go.mongodb.org/mongo-driver/bson"

var ProviderProfileValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"address",
			"city",
			"postal_code",
			"capacity",
			"age_groups",
			"available_time_from",
			"available_time_to",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"display_name": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"address": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"city": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"postal_code": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 12,
			},

			"latitude": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  -90,
				"maximum":  90,
			},

			"longitude": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  -180,
				"maximum":  180,
			},

			"capacity": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  50,
			},

			"age_groups": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType":  "string",
					"minLength": 1,
					"maxLength": 20,
				},
			},

			"max_commute_km": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  0,
				"maximum":  500,
			},

			"available_days": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"enum": []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
				},
			},

			"available_time_from": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"available_time_to": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"bio": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
