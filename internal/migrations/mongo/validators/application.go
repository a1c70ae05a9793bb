package validators

import "go.mongodb.org/mongo-driver/bson"

var RequestApplicationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"request_id",
			"provider_profile_id",
			"provider_user_id",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"request_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"provider_profile_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"provider_user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"cover_note": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"initial_message": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"status": bson.M{
				"enum": []string{"applied", "accepted", "declined"},
			},

			"shared_phone": bson.M{
				"bsonType":  "string",
				"maxLength": 20,
			},

			"shared_email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},

			"exchange_shared_phone": bson.M{
				"bsonType":  "string",
				"maxLength": 20,
			},

			"exchange_shared_email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},

			"decision_at": bson.M{
				"bsonType": "date",
			},

			"decision_message": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var UserSettingsValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"active_role",
			"created_at",
			"updated_at",
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

			"active_role": bson.M{
				"enum": []string{"provider", "exchange"},
			},

			"active_provider_profile_id": bson.M{
				"bsonType": "string",
			},

			"active_exchange_profile_id": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
