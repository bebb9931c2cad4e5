package validators

import "go.mongodb.org/mongo-driver/bson"

var TripValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"title",
			"status",
			"start_date",
			"max_capacity",
			"available_seats",
			"price_per_seat",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"DRAFT",
					"PUBLISHED",
				},
			},

			"start_date": bson.M{
				"bsonType": "date",
			},

			"max_capacity": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  500,
			},

			// Mirrors the service invariant: the counter can never leave
			// the [0, max_capacity] range. The upper bound is enforced by
			// the release pipeline, the lower bound here and by the
			// guarded decrement.
			"available_seats": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"price_per_seat": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"cancellation_fee_percent": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
				"maximum":  100,
			},

			"refundable_until_days_before": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
