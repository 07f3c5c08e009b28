/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
Each bucket contains only one type of record, stored under the bucket
prefix followed by the record key. Records validate themselves before they
are written and are read back with prefix queries in key order.
*/
package orm
