// Package pysrc reads Python source far enough to find function, class and
// module-level assignment declarations together with their annotation
// expressions. Bodies are tokenized and skipped; nothing is evaluated.
package pysrc
