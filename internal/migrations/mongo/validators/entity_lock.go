package validators

import "go.mongodb.org/mongo-driver/bson"

var EntityLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"expires_at",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			// "trip:<id>" or "booking:<id>"
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 6,
				"maxLength": 64,
			},

			"expires_at": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
