package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"trip_id",
			"user_id",
			"num_seats",
			"state",
			"price_at_booking",
			"idempotency_key",
			"expires_at",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"trip_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"num_seats": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  20,
			},

			"state": bson.M{
				"bsonType": "string",
				"enum": []string{
					"PENDING_PAYMENT",
					"CONFIRMED",
					"EXPIRED",
					"CANCELLED",
				},
			},

			"price_at_booking": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"idempotency_key": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"expires_at": bson.M{
				"bsonType": "date",
			},

			"payment_reference": bson.M{
				"bsonType": "string",
			},

			"refund_amount": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
