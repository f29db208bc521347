// Package correlate scores behavioral signature pairs and clusters
// accounts into identities.
//
// Two accounts are compared dimension by dimension: each sub-signature
// projects to a fixed-order vector and the absolute Pearson correlation
// of the two vectors becomes the dimension score. The five scores
// combine into one weighted score, and accounts transitively linked by
// scores at or above the threshold form an identity cluster.
package correlate
